package documents

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/records"
)

func dataURL(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

func TestParse(t *testing.T) {
	data, mime, err := Parse(dataURL("application/pdf", pdfBytes), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
	assert.Equal(t, pdfBytes, data)
}

var (
	binaryNoise = []byte{0x00, 0x9f, 0x13, 0xfe, 0x00, 0x42, 0x80, 0x01, 0xc3, 0x00, 0x7f, 0xee}
	zipBytes    = append([]byte("PK\x03\x04"), make([]byte, 26)...)
)

func TestParseAcceptsContainerForOfficeTypes(t *testing.T) {
	docx := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	_, mime, err := Parse(dataURL(docx, zipBytes), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, docx, mime)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
		max  int
		want error
	}{
		{name: "empty", url: " ", want: ErrEmpty},
		{name: "no prefix", url: "hello", want: ErrMalformed},
		{name: "not base64", url: "data:text/plain,hello", want: ErrMalformed},
		{name: "bad payload", url: "data:text/plain;base64,@@@", want: ErrMalformed},
		{name: "disallowed mime", url: dataURL("application/x-msdownload", []byte("MZ")), want: ErrUnsupported},
		{name: "mismatched content", url: dataURL("image/png", pdfBytes), want: ErrUnsupported},
		{name: "unrecognised bytes as png", url: dataURL("image/png", binaryNoise), want: ErrUnsupported},
		{name: "unrecognised bytes as pdf", url: dataURL("application/pdf", binaryNoise), want: ErrUnsupported},
		{name: "zip as pdf", url: dataURL("application/pdf", zipBytes), want: ErrUnsupported},
		{name: "too large", url: dataURL("application/pdf", pdfBytes), max: 4, want: ErrTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.url, nil, tc.max)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestNewKeepsIDsUnique(t *testing.T) {
	existing := []records.Document{{ID: 1000}, {ID: 1001}}
	doc, err := New(Upload{Type: "contract", FileName: "c.pdf", Data: dataURL("application/pdf", pdfBytes)}, 1000, existing, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), doc.ID)
	assert.Equal(t, "c.pdf", doc.Name)
	assert.Equal(t, int64(len(pdfBytes)), doc.Size)
	assert.Equal(t, "application/pdf", doc.MimeType)
}

func TestRemove(t *testing.T) {
	docs := []records.Document{{ID: 1}, {ID: 2}}
	docs, ok := Remove(docs, 1)
	assert.True(t, ok)
	assert.Len(t, docs, 1)
	_, ok = Remove(docs, 9)
	assert.False(t, ok)
}
