package formdata

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBoundary = "TestBoundary7MA4YWxkTrZu0gW"

type testField struct {
	name     string
	filename string
	ctype    string
	data     []byte
}

// buildBody собирает тело эталонным multipart.Writer с заданной границей.
func buildBody(t *testing.T, boundary string, fields ...testField) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.SetBoundary(boundary))

	for _, f := range fields {
		h := make(textproto.MIMEHeader)
		if f.filename != "" {
			h.Set("Content-Disposition", `form-data; name="`+f.name+`"; filename="`+f.filename+`"`)
		} else {
			h.Set("Content-Disposition", `form-data; name="`+f.name+`"`)
		}
		if f.ctype != "" {
			h.Set("Content-Type", f.ctype)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func uploadFields(payload []byte) []testField {
	return []testField{
		{name: "file", filename: "a.jpg", ctype: "image/jpeg", data: payload},
		{name: "filename", data: []byte("a.jpg")},
		{name: "mediaType", data: []byte("photo")},
		{name: "timestamp", data: []byte("2025-07-08T10:00:00Z")},
	}
}

// adversarialPayload содержит строку границы не на позиции разделителя.
func adversarialPayload(boundary string) []byte {
	var b bytes.Buffer
	b.WriteString("head--" + boundary + "tail\r\n")
	b.WriteString("--" + boundary + "X not a delimiter\r\n")
	b.WriteString("x--" + boundary + "--\r\n")
	b.Write(bytes.Repeat([]byte{0x00, 0xff, '\r', '\n', '-'}, 300))
	return b.Bytes()
}
