package multipart

import (
	"bytes"
	stdmultipart "mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBody(t *testing.T) {
	body := Decode("application/json", nil)
	assert.Equal(t, Empty, body.Outcome)
	assert.Empty(t, body.Fields)
	assert.Empty(t, body.Files)
}

func TestJSONFallback(t *testing.T) {
	body := Decode("application/json", []byte(`{"a":"b"}`))
	assert.Equal(t, JSON, body.Outcome)
	assert.Equal(t, map[string]string{"a": "b"}, body.Fields)
	assert.Empty(t, body.Files)
}

func TestJSONScalarsBecomeText(t *testing.T) {
	body := Decode("", []byte(`{"quantity": 5, "admin": true, "price": 12.50, "note": null, "tags": ["x"]}`))
	require.Equal(t, JSON, body.Outcome)
	assert.Equal(t, "5", body.Field("quantity"))
	assert.Equal(t, "true", body.Field("admin"))
	assert.Equal(t, "12.50", body.Field("price"))
	assert.False(t, body.Has("note"))
	assert.Equal(t, `["x"]`, body.Field("tags"))
}

func TestInvalidJSONIsDegenerate(t *testing.T) {
	for _, raw := range []string{`{"a":`, `[1,2]`, `"text"`, "\xff\xfe{}"} {
		body := Decode("text/plain", []byte(raw))
		assert.Equal(t, Degenerate, body.Outcome, raw)
		assert.Empty(t, body.Fields, raw)
		assert.Empty(t, body.Files, raw)
	}
}

func TestMultipartWithoutBoundary(t *testing.T) {
	body := Decode("multipart/form-data", []byte("--x\r\n"))
	assert.Equal(t, Degenerate, body.Outcome)
	assert.Empty(t, body.Fields)
}

func TestMultipartRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	require.NoError(t, w.SetBoundary("XyZBoundary42"))
	require.NoError(t, w.WriteField("objectName", "Кабель ВВГ"))
	require.NoError(t, w.WriteField("quantity", "12"))
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x0d, 0x0a, 0xff, 0x0d, 0x0a}
	fw, err := w.CreateFormFile("billFile", "счёт.pdf")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	body := Decode(w.FormDataContentType(), buf.Bytes())
	require.Equal(t, Multipart, body.Outcome)
	assert.Equal(t, "Кабель ВВГ", body.Field("objectName"))
	assert.Equal(t, "12", body.Field("quantity"))

	file, ok := body.File("billFile")
	require.True(t, ok)
	assert.Equal(t, "счёт.pdf", file.Filename)
	assert.Equal(t, payload, file.Data)
}

func TestEmptyFileSelectionsAreDropped(t *testing.T) {
	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	require.NoError(t, w.SetBoundary("b0undary"))

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="invoiceFile"; filename=""`)
	h.Set("Content-Type", "application/octet-stream")
	_, err := w.CreatePart(h)
	require.NoError(t, err)

	fw, err := w.CreateFormFile("billFile", "empty.pdf")
	require.NoError(t, err)
	_, err = fw.Write(nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	body := Decode("multipart/form-data; boundary=b0undary", buf.Bytes())
	assert.Equal(t, Multipart, body.Outcome)
	assert.Empty(t, body.Files)
	assert.Empty(t, body.Fields, "file parts must never become text fields")
}

func TestLastFieldWinsAndNamelessPartsAreDiscarded(t *testing.T) {
	raw := "--B\r\n" +
		"Content-Disposition: form-data; name=\"theme\"\r\n\r\nfirst\r\n" +
		"--B\r\n" +
		"Content-Disposition: form-data; name=\"theme\"\r\n\r\nsecond\r\n" +
		"--B\r\n" +
		"Content-Disposition: form-data\r\n\r\norphan\r\n" +
		"--B\r\n" +
		"Content-Disposition: form-data; name=\"broken\"\r\nno blank line" +
		"--B--\r\n"

	body := Decode(`multipart/form-data; boundary="B"`, []byte(raw))
	assert.Equal(t, map[string]string{"theme": "second"}, body.Fields)
}

func TestOnlyOneTrailingCRLFIsStripped(t *testing.T) {
	raw := "--B\r\nContent-Disposition: form-data; name=\"note\"\r\n\r\nline\r\n\r\n--B--\r\n"
	body := Decode("multipart/form-data; boundary=B", []byte(raw))
	assert.Equal(t, "line\r\n", body.Field("note"))
}

func TestParsePartHeaders(t *testing.T) {
	p := parsePartHeaders("\r\ncontent-disposition: form-data; name=\"doc\"; filename=\"a b.docx\"\r\nContent-Type: application/msword")
	assert.Equal(t, "doc", p.name)
	assert.Equal(t, "a b.docx", p.filename)
	assert.True(t, p.hasFilename)

	p = parsePartHeaders("Content-Type: text/plain")
	assert.Empty(t, p.name)
	assert.False(t, p.hasFilename)
}

func TestQuotedSemicolonsStayInParameters(t *testing.T) {
	raw := "--XX\r\n" +
		"Content-Disposition: form-data; name=\"billFile\"; filename=\"act;2024.pdf\"\r\n" +
		"Content-Type: application/pdf\r\n\r\n" +
		"%PDF-1.4\r\n" +
		"--XX\r\n" +
		"Content-Disposition: form-data; name=\"note;draft\"\r\n\r\n" +
		"kept\r\n" +
		"--XX--\r\n"
	body := Decode("multipart/form-data; boundary=XX", []byte(raw))
	require.Equal(t, Multipart, body.Outcome)

	f, ok := body.File("billFile")
	require.True(t, ok)
	assert.Equal(t, "act;2024.pdf", f.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), f.Data)
	assert.Equal(t, "kept", body.Field("note;draft"))
}

func TestBoundaryParam(t *testing.T) {
	assert.Equal(t, "abc", boundaryParam("multipart/form-data; boundary=abc"))
	assert.Equal(t, "a=b", boundaryParam("multipart/form-data; charset=utf-8; boundary=\"a=b\""))
	assert.Equal(t, "", boundaryParam("multipart/form-data; charset=utf-8"))
	assert.Equal(t, "a;b", boundaryParam("multipart/form-data; boundary=\"a;b\""))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "degenerate", Degenerate.String())
	assert.Equal(t, "multipart", Multipart.String())
}
