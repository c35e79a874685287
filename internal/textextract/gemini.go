package textextract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

const geminiTimeout = 120 * time.Second

// Gemini transcribes document images with the Gemini vision API.
type Gemini struct {
	apiKey string
	model  string
}

func NovoGemini(cfg models.GeminiConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Gemini{apiKey: cfg.APIKey, model: model}
}

func (g *Gemini) Nome() string { return "gemini" }

func (g *Gemini) ExtrairTexto(imagem []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), geminiTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer client.Close()

	// genai espera o subtipo MIME (png, jpeg), não o tipo completo.
	formato := strings.TrimPrefix(contentType, "image/")

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(promptOCR), genai.ImageData(formato, imagem))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: resposta sem conteúdo")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if texto, ok := part.(genai.Text); ok {
			sb.WriteString(string(texto))
		}
	}
	return sb.String(), nil
}
