package render

import (
	"volslice/pkg/raster"
)

// Segment is a contour piece between two points in raster coordinates,
// where (x, y) is the center of pixel (x, y).
type Segment struct {
	A, B [2]float64
}

// edge pairs for each marching-squares case. Corners are numbered
// counterclockwise from (x, y): 0 (x, y), 1 (x+1, y), 2 (x+1, y+1), 3 (x, y+1).
// Edge e joins corner e and corner (e+1)%4. Saddles 5 and 10 are resolved
// separately.
var cases = [16][]int{
	0:  nil,
	1:  {3, 0},
	2:  {0, 1},
	3:  {3, 1},
	4:  {1, 2},
	6:  {0, 2},
	7:  {3, 2},
	8:  {2, 3},
	9:  {0, 2},
	11: {1, 2},
	12: {1, 3},
	13: {0, 1},
	14: {3, 0},
	15: nil,
}

// Contours traces the iso-line of data at level with marching squares.
// A pixel is inside when its value exceeds level; NaN is outside.
func Contours(data *raster.Scalar, level float64) []Segment {
	var segs []Segment
	for y := 0; y+1 < data.H; y++ {
		for x := 0; x+1 < data.W; x++ {
			corners := [4][2]float64{
				{float64(x), float64(y)},
				{float64(x + 1), float64(y)},
				{float64(x + 1), float64(y + 1)},
				{float64(x), float64(y + 1)},
			}
			v := [4]float64{data.At(x, y), data.At(x+1, y), data.At(x+1, y+1), data.At(x, y+1)}

			idx := 0
			for c := 0; c < 4; c++ {
				if v[c] > level {
					idx |= 1 << c
				}
			}

			point := func(e int) [2]float64 {
				a, b := e, (e+1)%4
				t := (level - v[a]) / (v[b] - v[a])
				return [2]float64{
					corners[a][0] + t*(corners[b][0]-corners[a][0]),
					corners[a][1] + t*(corners[b][1]-corners[a][1]),
				}
			}

			var edges []int
			switch idx {
			case 5, 10:
				centerHigh := (v[0]+v[1]+v[2]+v[3])/4 > level
				if (idx == 5) == centerHigh {
					edges = []int{0, 1, 2, 3}
				} else {
					edges = []int{3, 0, 1, 2}
				}
			default:
				edges = cases[idx]
			}
			for i := 0; i+1 < len(edges); i += 2 {
				segs = append(segs, Segment{A: point(edges[i]), B: point(edges[i+1])})
			}
		}
	}
	return segs
}
