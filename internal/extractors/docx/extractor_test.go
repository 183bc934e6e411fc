package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func TestFormats(t *testing.T) {
	e := New()
	assert.Equal(t, []domain.Format{domain.FormatDOCX}, e.Formats())
}

func TestExtract(t *testing.T) {
	e := New()

	t.Run("paragraphs joined by newline", func(t *testing.T) {
		docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
</w:body>
</w:document>`

		text, err := e.Extract(context.Background(), createTestDOCX(docXML))
		require.NoError(t, err)
		assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
	})

	t.Run("not a zip archive", func(t *testing.T) {
		_, err := e.Extract(context.Background(), []byte("plain text, not a docx"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing document xml", func(t *testing.T) {
		_, err := e.Extract(context.Background(), createTestDOCX(""))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
