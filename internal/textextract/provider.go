package textextract

import (
	"fmt"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

// Provider reads the text of a scanned document image.
type Provider interface {
	// ExtrairTexto returns the plain text of the image. contentType is
	// the MIME type of the upload (image/png, image/jpeg).
	ExtrairTexto(imagem []byte, contentType string) (string, error)

	// Nome identifies the provider in logs and responses.
	Nome() string
}

const promptOCR = `Você é um sistema de OCR para documentos fiscais brasileiros (NF-e, DAS, DARF, DCTFWeb, boletos, guias e extratos).

Transcreva TODO o texto visível na imagem, linha por linha, na ordem de leitura. Preserve números, datas, códigos de barras, CNPJs e valores EXATAMENTE como aparecem. Não interprete, não resuma, não corrija erros do documento e não adicione comentários. Devolva apenas o texto transcrito.`

// NovoProvider builds the provider named in the configuration.
func NovoProvider(cfg models.AIConfig) (Provider, error) {
	switch cfg.DefaultProvider {
	case "openai":
		return NovoOpenAI(cfg.OpenAI), nil
	case "gemini":
		return NovoGemini(cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("provedor de IA desconhecido: %q", cfg.DefaultProvider)
	}
}
