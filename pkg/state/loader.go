// loader.go - Decode state JSON and load .psbundle (ZIP) bundles.
package state

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xob0t/poststencil/pkg/imageload"
)

// BundleStateFile is the state document inside a bundle.
const BundleStateFile = "state.json"

// maxAssetSize bounds a single bundle entry.
const maxAssetSize = 32 << 20

// Decode parses JSON onto the defaults, so absent fields keep their default
// value, then normalizes the result.
func Decode(data []byte) (*State, error) {
	st := Default()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	st.Normalize()
	return st, nil
}

// DecodeChecked is Decode that also returns the validation warnings of the
// document as written.
func DecodeChecked(data []byte) (*State, []string, error) {
	return DecodeResolved(data, nil)
}

// DecodeResolved is DecodeChecked with every image reference passed through
// resolve before validation. A nil resolve leaves references as written.
func DecodeResolved(data []byte, resolve func(ref string) (string, error)) (*State, []string, error) {
	st := Default()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, nil, fmt.Errorf("parse state: %w", err)
	}
	if resolve != nil {
		if err := st.ResolveImages(resolve); err != nil {
			return nil, nil, err
		}
	}
	warnings := Validate(st)
	st.Normalize()
	return st, warnings, nil
}

// ApplyData overlays a partial JSON document onto st. Fields absent from
// data keep their current value.
func ApplyData(st *State, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, st); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	st.Normalize()
	return nil
}

// LoadFile reads a plain JSON state, or a bundle when the file is a ZIP.
func LoadFile(p string) (*State, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if isZip(data) {
		return decodeBundle(data, p)
	}
	return Decode(data)
}

// LoadBundle opens a bundle: a ZIP holding state.json plus an assets/
// directory. Image fields referring to bundle entries are inlined as data
// URIs, so no filesystem path reaches the renderer.
func LoadBundle(p string) (*State, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return decodeBundle(data, p)
}

// ReadBundle is LoadBundle for an in-memory archive.
func ReadBundle(data []byte) (*State, error) {
	return decodeBundle(data, "bundle")
}

func decodeBundle(data []byte, name string) (*State, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		clean, ok := cleanEntry(f.Name)
		if !ok {
			return nil, fmt.Errorf("illegal path in %s: %s", name, f.Name)
		}
		if !f.FileInfo().IsDir() {
			entries[clean] = f
		}
	}

	sf, ok := entries[BundleStateFile]
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", name, BundleStateFile)
	}
	raw, err := readEntry(sf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", BundleStateFile, err)
	}
	st, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	resolve := func(ref string) (string, error) {
		if imageload.Classify(ref) != imageload.KindInvalid {
			return ref, nil
		}
		clean, ok := cleanEntry(ref)
		if !ok {
			return "", fmt.Errorf("illegal asset path %q", ref)
		}
		f, ok := entries[clean]
		if !ok {
			return "", fmt.Errorf("asset %q not in bundle", ref)
		}
		b, err := readEntry(f)
		if err != nil {
			return "", fmt.Errorf("read asset %q: %w", ref, err)
		}
		return imageload.EncodeDataURI(mediaType(clean, b), b), nil
	}
	if err := st.ResolveImages(resolve); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return st, nil
}

// ResolveImages rewrites every image reference in st through fn. Empty
// references are skipped.
func (s *State) ResolveImages(fn func(ref string) (string, error)) error {
	for _, ref := range s.imageFields() {
		if strings.TrimSpace(*ref) == "" {
			continue
		}
		v, err := fn(*ref)
		if err != nil {
			return err
		}
		*ref = v
	}
	return nil
}

// cleanEntry normalizes a bundle path and rejects anything escaping the
// archive root.
func cleanEntry(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	clean := path.Clean("/" + name)[1:]
	if clean == "" || strings.HasPrefix(name, "/") || strings.Contains("/"+name+"/", "/../") {
		return "", false
	}
	return clean, true
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxAssetSize {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxAssetSize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxAssetSize))
}

func mediaType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); strings.HasPrefix(t, "image/") {
		return t
	}
	return http.DetectContentType(data)
}

func isZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}
