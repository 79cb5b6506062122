// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"bytes"
	"image"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SourceKind classifies where an avatar image comes from.
type SourceKind uint8

const (
	// SourceNone is the empty source. Loading it fails with
	// ErrSourceUnresolvable.
	SourceNone SourceKind = iota
	// SourceBytes is an in-memory byte buffer.
	SourceBytes
	// SourcePath is a local filesystem path.
	SourcePath
	// SourceURL is an HTTP or HTTPS URL.
	SourceURL
)

func (k SourceKind) String() string {
	switch k {
	case SourceBytes:
		return "bytes"
	case SourcePath:
		return "path"
	case SourceURL:
		return "url"
	default:
		return "none"
	}
}

// Format is the decode path selected for a source.
type Format uint8

const (
	// FormatRaster is decoded by any registered still-image decoder.
	FormatRaster Format = iota
	// FormatPNG is decoded by the PNG decoder only.
	FormatPNG
	// FormatAnimated is a multi-frame GIF played by the playback controller.
	FormatAnimated
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatAnimated:
		return "animated"
	default:
		return "raster"
	}
}

// Animated reports whether f selects frame playback.
func (f Format) Animated() bool {
	return f == FormatAnimated
}

// pngMagic is the leading part of the PNG signature used for sniffing.
var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// Source is one of: inline bytes, a local path, or a remote URL.
// Build it with BytesSource, ImageSource or NewURLSource, then pass it
// through Resolve (SetSource does this).
type Source struct {
	Kind   SourceKind
	Data   []byte      // SourceBytes
	Image  image.Image // SourceBytes with an already decoded image
	Path   string      // SourcePath
	URL    string      // SourceURL
	Format Format
}

// BytesSource wraps raw encoded image bytes. The slice is not copied.
func BytesSource(data []byte) Source {
	return Source{Kind: SourceBytes, Data: data}
}

// ImageSource wraps an already decoded still image.
func ImageSource(img image.Image) Source {
	return Source{Kind: SourceBytes, Image: img}
}

// NewURLSource classifies a string that is either a local path or a URL.
func NewURLSource(s string) Source {
	return Resolve(Source{Kind: SourcePath, Path: s})
}

// Resolve classifies src and selects its decode format. It performs no I/O.
//
// Inline bytes are classified by magic number: a PNG signature selects
// PNG decoding, a GIF signature selects animated playback, and anything
// else falls back to generic raster decoding. Strings are classified by
// prefix (http/https selects a URL) and by a trailing .gif suffix.
func Resolve(src Source) Source {
	switch src.Kind {
	case SourceBytes:
		if src.Image != nil {
			src.Format = FormatRaster
			return src
		}
		if len(src.Data) == 0 {
			return Source{Kind: SourceNone}
		}
		src.Format = Sniff(src.Data)
		return src
	case SourcePath, SourceURL:
		s := src.Path
		if src.Kind == SourceURL {
			s = src.URL
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return Source{Kind: SourceNone}
		}
		if isRemote(s) {
			return Source{Kind: SourceURL, URL: s, Format: formatFromName(s, true)}
		}
		return Source{Kind: SourcePath, Path: s, Format: formatFromName(s, false)}
	default:
		return Source{Kind: SourceNone}
	}
}

// Sniff inspects the leading bytes of data and returns its decode format.
func Sniff(data []byte) Format {
	if bytes.HasPrefix(data, pngMagic) {
		return FormatPNG
	}
	if mimetype.Detect(data).Is("image/gif") {
		return FormatAnimated
	}
	return FormatRaster
}

// isRemote reports whether s starts with an http or https scheme.
func isRemote(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// formatFromName selects the format from a path or URL suffix. For URLs
// the query and fragment are ignored.
func formatFromName(s string, remote bool) Format {
	name := s
	if remote {
		if u, err := url.Parse(s); err == nil {
			name = u.Path
		}
	}
	if strings.EqualFold(path.Ext(name), ".gif") {
		return FormatAnimated
	}
	return FormatRaster
}

// key identifies a resolved source for change detection.
func (s Source) key() string {
	switch s.Kind {
	case SourcePath:
		return "path:" + s.Path
	case SourceURL:
		return "url:" + s.URL
	default:
		return s.Kind.String()
	}
}

// describe returns a short value for log records.
func (s Source) describe() string {
	switch s.Kind {
	case SourceBytes:
		if s.Image != nil {
			return "image"
		}
		return mimetype.Detect(s.Data).String()
	case SourcePath:
		return s.Path
	case SourceURL:
		return s.URL
	default:
		return ""
	}
}
