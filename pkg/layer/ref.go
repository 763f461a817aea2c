package layer

import (
	"fmt"

	"volslice/internal/models"
	"volslice/pkg/volume"
)

// VolumeRef names a volume either by the path of its header or by an
// already loaded value. The zero value refers to nothing.
type VolumeRef struct {
	path string
	vol  *models.Volume
}

// PathRef refers to a volume header on disk
func PathRef(path string) VolumeRef {
	return VolumeRef{path: path}
}

// Loaded refers to a volume already in memory
func Loaded(vol *models.Volume) VolumeRef {
	return VolumeRef{vol: vol}
}

// IsZero reports whether the reference is empty
func (r VolumeRef) IsZero() bool {
	return r.path == "" && r.vol == nil
}

func (r VolumeRef) String() string {
	switch {
	case r.vol != nil:
		return fmt.Sprintf("loaded volume %v", r.vol.Shape)
	case r.path != "":
		return r.path
	default:
		return "<none>"
	}
}

// Resolve loads the referenced volume. An empty reference resolves to nil.
func (r VolumeRef) Resolve() (*models.Volume, error) {
	switch {
	case r.vol != nil:
		if err := r.vol.Validate(); err != nil {
			return nil, err
		}
		return r.vol, nil
	case r.path != "":
		vol, err := volume.Load(r.path)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", r.path, err)
		}
		return vol, nil
	default:
		return nil, nil
	}
}
