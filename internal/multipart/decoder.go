// Package multipart decodes request bodies into text fields and file
// attachments. It works on a fully buffered body and never fails: input it
// cannot use yields an empty result whose Outcome says why.
package multipart

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Outcome names what the decoder made of a body.
type Outcome int

const (
	// Empty means no body was supplied.
	Empty Outcome = iota
	// JSON means the body was a JSON object.
	JSON
	// Multipart means the body was multipart/form-data with a boundary.
	Multipart
	// Degenerate means the body was present but unusable and was ignored.
	Degenerate
)

func (o Outcome) String() string {
	switch o {
	case Empty:
		return "empty"
	case JSON:
		return "json"
	case Multipart:
		return "multipart"
	case Degenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// MarkerFormData identifies multipart content types.
const MarkerFormData = "multipart/form-data"

var (
	crlf        = []byte("\r\n")
	headerBreak = []byte("\r\n\r\n")
)

// File is an uploaded attachment.
type File struct {
	Filename string
	Data     []byte
}

// Body is a decoded request body.
type Body struct {
	Fields  map[string]string
	Files   map[string]File
	Outcome Outcome
}

func newBody(outcome Outcome) Body {
	return Body{
		Fields:  make(map[string]string),
		Files:   make(map[string]File),
		Outcome: outcome,
	}
}

// Field returns the named field or "".
func (b Body) Field(name string) string { return b.Fields[name] }

// Has reports whether the field was supplied.
func (b Body) Has(name string) bool {
	_, ok := b.Fields[name]
	return ok
}

// File returns the named attachment, if any.
func (b Body) File(name string) (File, bool) {
	f, ok := b.Files[name]
	return f, ok
}

// Decode parses body according to contentType.
func Decode(contentType string, body []byte) Body {
	if len(body) == 0 {
		return newBody(Empty)
	}
	if !strings.Contains(contentType, MarkerFormData) {
		return decodeJSON(body)
	}

	boundary := boundaryParam(contentType)
	if boundary == "" {
		return newBody(Degenerate)
	}
	return decodeParts(body, []byte("--"+boundary))
}

// decodeJSON maps a top-level JSON object onto fields. Strings keep their
// value, numbers and booleans their literal text, nested values their raw
// JSON; nulls are skipped.
func decodeJSON(body []byte) Body {
	if !utf8.Valid(body) || !gjson.ValidBytes(body) {
		return newBody(Degenerate)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return newBody(Degenerate)
	}

	out := newBody(JSON)
	doc.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			out.Fields[key.String()] = value.Str
		default:
			out.Fields[key.String()] = value.Raw
		}
		return true
	})
	return out
}

func decodeParts(body, delimiter []byte) Body {
	out := newBody(Multipart)
	for _, segment := range bytes.Split(body, delimiter) {
		trimmed := bytes.TrimSpace(segment)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("--")) {
			continue
		}

		idx := bytes.Index(segment, headerBreak)
		if idx < 0 {
			continue
		}
		headers := string(segment[:idx])
		content := bytes.TrimSuffix(segment[idx+len(headerBreak):], crlf)

		params := parsePartHeaders(headers)
		if params.name == "" {
			continue
		}
		if !params.hasFilename {
			out.Fields[params.name] = string(content)
			continue
		}
		if params.filename == "" || len(content) == 0 {
			continue
		}
		data := make([]byte, len(content))
		copy(data, content)
		out.Files[params.name] = File{Filename: params.filename, Data: data}
	}
	return out
}
