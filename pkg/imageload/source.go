// Package imageload resolves image references into decoded bitmaps. Remote
// URLs go through an ordered chain of fetch strategies; embedded data URIs
// decode directly. Failures yield nil, never an error, so callers simply
// omit the layer.
package imageload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// Kind classifies an image reference.
type Kind int

const (
	KindNone     Kind = iota // unset: skip the layer
	KindRemote               // http(s) URL: load through strategies
	KindEmbedded             // data: URI: decode directly
	KindInvalid              // anything else, e.g. a filesystem path
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRemote:
		return "remote"
	case KindEmbedded:
		return "embedded"
	default:
		return "invalid"
	}
}

// Classify reports what kind of reference ref is.
func Classify(ref string) Kind {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return KindNone
	case hasPrefixFold(ref, "data:"):
		return KindEmbedded
	case hasPrefixFold(ref, "http://"), hasPrefixFold(ref, "https://"):
		if u, err := url.Parse(ref); err == nil && u.Host != "" {
			return KindRemote
		}
	}
	return KindInvalid
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

var errDataURI = errors.New("malformed data URI")

// DecodeDataURI splits a data: URI into its media type and payload.
// Both base64 and percent-encoded payloads are supported.
func DecodeDataURI(ref string) (mediaType string, data []byte, err error) {
	if !hasPrefixFold(ref, "data:") {
		return "", nil, errDataURI
	}
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return "", nil, errDataURI
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mediaType = "text/plain"
	if meta != "" {
		mt, _, perr := mime.ParseMediaType(meta)
		if perr != nil {
			return "", nil, fmt.Errorf("%w: %v", errDataURI, perr)
		}
		mediaType = mt
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errDataURI, err)
	}
	return mediaType, data, nil
}

// EncodeDataURI builds a base64 data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
