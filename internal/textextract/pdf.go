// Package textextract acquires raw text from uploaded documents: the
// PDF text layer for born-digital files and AI vision providers for
// scanned images.
package textextract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFTexto extracts the text layer of a PDF. Scanned PDFs without a
// text layer come back as an empty string, not an error.
func PDFTexto(conteudo []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(conteudo), int64(len(conteudo)))
	if err != nil {
		return "", fmt.Errorf("abrir pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extrair texto do pdf: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("ler texto do pdf: %w", err)
	}
	return buf.String(), nil
}

// PareceCorpoPDF reports whether the bytes look like a PDF file.
func PareceCorpoPDF(conteudo []byte) bool {
	return bytes.HasPrefix(conteudo, []byte("%PDF"))
}
