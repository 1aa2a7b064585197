package multipart

import "strings"

// dispositionParams holds the parameters of a part's Content-Disposition.
type dispositionParams struct {
	name        string
	filename    string
	hasFilename bool
}

// parsePartHeaders scans a part's header block for Content-Disposition and
// tokenizes it: split on ';' outside double quotes, then on the first '=',
// trim blanks and quotes.
func parsePartHeaders(block string) dispositionParams {
	var params dispositionParams
	for _, line := range strings.Split(block, "\r\n") {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(line[:colon]), "Content-Disposition") {
			continue
		}
		for _, token := range splitParams(line[colon+1:]) {
			key, value, ok := strings.Cut(token, "=")
			if !ok {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "name":
				params.name = unquote(value)
			case "filename":
				params.filename = unquote(value)
				params.hasFilename = true
			}
		}
		break
	}
	return params
}

// splitParams splits a header value on ';' that are not inside a quoted
// string.
func splitParams(v string) []string {
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				parts = append(parts, v[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, v[start:])
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return strings.Trim(v, `"`)
}

// boundaryParam extracts the boundary parameter from a content type.
func boundaryParam(contentType string) string {
	for _, part := range splitParams(contentType) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "boundary=") {
			continue
		}
		return unquote(part[len("boundary="):])
	}
	return ""
}
