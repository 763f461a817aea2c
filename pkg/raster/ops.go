package raster

// Blend places over on top of under using a per-pixel alpha in [0, 1]:
// under*(1-a) + over*a on every channel.
func Blend(under, over *RGB, alpha *Scalar) (*RGB, error) {
	if err := checkShape(under.W, under.H, over.W, over.H); err != nil {
		return nil, err
	}
	if err := checkShape(under.W, under.H, alpha.W, alpha.H); err != nil {
		return nil, err
	}

	out := NewRGB(under.W, under.H)
	for p, a := range alpha.Pix {
		for c := 3 * p; c < 3*p+3; c++ {
			out.Pix[c] = under.Pix[c]*(1-a) + over.Pix[c]*a
		}
	}
	return out, nil
}

// MaskBack keeps img where m is true and paints back elsewhere.
// A nil mask returns img unchanged.
func MaskBack(img *RGB, m *Mask, back [3]float64) (*RGB, error) {
	if m == nil {
		return img, nil
	}
	if err := checkShape(img.W, img.H, m.W, m.H); err != nil {
		return nil, err
	}

	out := img.Clone()
	for p, keep := range m.Pix {
		if !keep {
			copy(out.Pix[3*p:3*p+3], back[:])
		}
	}
	return out, nil
}

// MaskOnto keeps img where m is true and shows under elsewhere.
// A nil mask returns img unchanged.
func MaskOnto(img *RGB, m *Mask, under *RGB) (*RGB, error) {
	if m == nil {
		return img, nil
	}
	if err := checkShape(img.W, img.H, m.W, m.H); err != nil {
		return nil, err
	}
	if err := checkShape(img.W, img.H, under.W, under.H); err != nil {
		return nil, err
	}

	out := img.Clone()
	for p, keep := range m.Pix {
		if !keep {
			copy(out.Pix[3*p:3*p+3], under.Pix[3*p:3*p+3])
		}
	}
	return out, nil
}

// Checkerboard interleaves two images in square tiles, starting with a in
// the first tile. Edge tiles are truncated. Useful for judging registration.
func Checkerboard(a, b *RGB, square int) (*RGB, error) {
	if err := checkShape(a.W, a.H, b.W, b.H); err != nil {
		return nil, err
	}
	if square < 1 {
		square = 1
	}

	out := NewRGB(a.W, a.H)
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			src := a
			if (x/square+y/square)%2 == 1 {
				src = b
			}
			i := 3 * (y*a.W + x)
			copy(out.Pix[i:i+3], src.Pix[i:i+3])
		}
	}
	return out, nil
}
