package fonts

import (
	"math"

	"golang.org/x/image/font"
)

type faceKey struct {
	family string
	size   float64
}

// FaceCache memoizes faces for one render. Faces are not safe for
// concurrent use, so each render owns its cache.
type FaceCache struct {
	m     *Manager
	faces map[faceKey]font.Face
}

// NewFaceCache returns an empty cache backed by m.
func (m *Manager) NewFaceCache() *FaceCache {
	return &FaceCache{m: m, faces: make(map[faceKey]font.Face)}
}

// Face returns the face of family at sizePx. Sizes are rounded to 1/64 px
// so equal layouts share faces. A face that cannot be built falls back to
// the embedded regular font at the same size.
func (c *FaceCache) Face(family string, sizePx float64) font.Face {
	key := faceKey{family: canonical(family), size: math.Round(sizePx*64) / 64}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f, err := c.m.Face(key.family, key.size)
	if err != nil {
		c.m.log.Warn("font face unavailable", "family", key.family, "size", key.size, "error", err)
		f, err = c.m.Face(Inter, max(key.size, 1))
		if err != nil {
			return nil
		}
	}
	c.faces[key] = f
	return f
}

// Close releases every cached face.
func (c *FaceCache) Close() {
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
}
