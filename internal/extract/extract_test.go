package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text     string
	err      error
	lastName string
}

func (f *fakeOCR) ParseImage(_ context.Context, filename string, _ []byte) (string, error) {
	f.lastName = filename
	return f.text, f.err
}

func TestExtractPlainText(t *testing.T) {
	e := New(nil)

	text, err := e.Extract(context.Background(), "notes.txt", "text/plain", []byte("meeting at noon"))
	require.NoError(t, err)
	assert.Equal(t, "meeting at noon", text)
}

func TestExtractPlainTextWithCharsetParameter(t *testing.T) {
	e := New(nil)

	text, err := e.Extract(context.Background(), "notes.txt", "text/plain; charset=utf-8", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractSizeLimit(t *testing.T) {
	e := New(nil, WithMaxSize(4))

	_, err := e.Extract(context.Background(), "big.txt", "text/plain", []byte("too large"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSizeLimit)
}

func TestExtractUnsupportedType(t *testing.T) {
	e := New(nil)

	_, err := e.Extract(context.Background(), "archive.zip", "application/zip", []byte{0x50, 0x4b})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractImageWithoutOCRClient(t *testing.T) {
	e := New(nil)

	_, err := e.Extract(context.Background(), "scan.png", "image/png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractImageRoutesToOCR(t *testing.T) {
	ocr := &fakeOCR{text: "recognized text"}
	e := New(ocr)

	text, err := e.Extract(context.Background(), "scan.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "recognized text", text)
	assert.Equal(t, "scan.jpg", ocr.lastName)
}

// pdfWithoutTextLayer assembles a minimal one-page PDF whose content stream
// draws a line but carries no text operators, like a scanned document.
func pdfWithoutTextLayer() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 5)

	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << >> >>\nendobj\n")
	offsets[4] = buf.Len()
	stream := "0 0 m 612 792 l S\n"
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n", len(stream), stream)

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func TestExtractPDFWithoutTextLayer(t *testing.T) {
	e := New(nil)

	text, err := e.Extract(context.Background(), "scan.pdf", "application/pdf", pdfWithoutTextLayer())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractPDFGarbageContentFails(t *testing.T) {
	e := New(nil)

	_, err := e.Extract(context.Background(), "broken.pdf", "application/pdf", []byte("%PDF-1.4 truncated"))
	require.Error(t, err)
}

func TestNormalizeTypeExtensionFallback(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        string
	}{
		{"declared type wins", "report.bin", "application/pdf", "application/pdf"},
		{"octet-stream pdf", "report.pdf", "application/octet-stream", "application/pdf"},
		{"octet-stream docx", "Minutes.DOCX", "application/octet-stream", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"missing type png", "scan.png", "", "image/png"},
		{"missing type jpeg", "photo.jpeg", "", "image/jpeg"},
		{"missing type txt", "notes.txt", "", "text/plain"},
		{"unknown stays unknown", "data.bin", "application/octet-stream", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeType(tt.filename, tt.contentType))
		})
	}
}

func TestDocxXMLToText(t *testing.T) {
	content := `<w:document xmlns:w="x"><w:body>` +
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>run.</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := docxXMLToText(content)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond run.", text)
}

func TestOCRSpaceClientParsesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "test-key", r.FormValue("apikey"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "scan.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Invoice #42\n"}],"IsErroredOnProcessing":false}`))
	}))
	defer server.Close()

	client := NewOCRSpaceClient("test-key", WithOCREndpoint(server.URL))

	text, err := client.ParseImage(context.Background(), "scan.png", []byte{0x89})
	require.NoError(t, err)
	assert.Equal(t, "Invoice #42", text)
}

func TestOCRSpaceClientProcessingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[],"IsErroredOnProcessing":true,"ErrorMessage":["file corrupt"]}`))
	}))
	defer server.Close()

	client := NewOCRSpaceClient("test-key", WithOCREndpoint(server.URL))

	_, err := client.ParseImage(context.Background(), "bad.png", []byte{0x00})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file corrupt")
}

func TestOCRSpaceClientEmptyTextIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":""}],"IsErroredOnProcessing":false}`))
	}))
	defer server.Close()

	client := NewOCRSpaceClient("test-key", WithOCREndpoint(server.URL))

	text, err := client.ParseImage(context.Background(), "blank.png", []byte{0x89})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOCRSpaceClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewOCRSpaceClient("bad-key", WithOCREndpoint(server.URL))

	_, err := client.ParseImage(context.Background(), "scan.png", []byte{0x89})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
