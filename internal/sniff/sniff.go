// Package sniff picks content types and dispositions for stored documents.
package sniff

import (
	"bytes"
	"strings"
)

const (
	PDF         = "application/pdf"
	JPEG        = "image/jpeg"
	PNG         = "image/png"
	GIF         = "image/gif"
	MSWord      = "application/msword"
	DOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	XLS         = "application/vnd.ms-excel"
	XLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	OctetStream = "application/octet-stream"
)

// DefaultFilename is used when a stored document has no name.
const DefaultFilename = "document"

var byExtension = map[string]string{
	"pdf":  PDF,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"png":  PNG,
	"gif":  GIF,
	"doc":  MSWord,
	"docx": DOCX,
	"xls":  XLS,
	"xlsx": XLSX,
}

var signatures = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("%PDF"), PDF},
	{[]byte{0xFF, 0xD8, 0xFF}, JPEG},
	{[]byte("\x89PNG\r\n\x1a\n"), PNG},
}

var inline = map[string]bool{
	PDF:  true,
	JPEG: true,
	PNG:  true,
	GIF:  true,
}

// Detect returns the MIME type for data. A known filename extension wins
// over the leading bytes.
func Detect(data []byte, filename string) string {
	if mime, ok := byExtension[extension(filename)]; ok {
		return mime
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.mime
		}
	}
	return OctetStream
}

func extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// IsInline reports whether browsers should render mime in place.
func IsInline(mime string) bool {
	return inline[mime]
}

// EncodeFilename percent-encodes name for the filename* parameter. Unreserved
// ASCII and '/' are left as is.
func EncodeFilename(name string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(name) * 3)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~' || c == '/':
		return true
	}
	return false
}

// Disposition builds the Content-Disposition header for a document.
func Disposition(mime, filename string) string {
	if filename == "" {
		filename = DefaultFilename
	}
	kind := "attachment"
	if IsInline(mime) {
		kind = "inline"
	}
	return kind + "; filename*=UTF-8''" + EncodeFilename(filename)
}

// Content is the sniffed outcome for a document.
type Content struct {
	MIME        string
	Inline      bool
	Disposition string
}

// Sniff combines Detect, IsInline and Disposition.
func Sniff(data []byte, filename string) Content {
	if filename == "" {
		filename = DefaultFilename
	}
	mime := Detect(data, filename)
	return Content{
		MIME:        mime,
		Inline:      IsInline(mime),
		Disposition: Disposition(mime, filename),
	}
}
