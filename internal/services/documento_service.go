// Package services orchestrates the document processing and audit
// pipelines over the extraction, parsing and persistence layers.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/fiscal-doc-service/internal/db"
	"github.com/contaflow/fiscal-doc-service/internal/extract"
	"github.com/contaflow/fiscal-doc-service/internal/models"
	"github.com/contaflow/fiscal-doc-service/internal/observability"
	"github.com/contaflow/fiscal-doc-service/internal/parsers"
	"github.com/contaflow/fiscal-doc-service/internal/storage"
	"github.com/contaflow/fiscal-doc-service/internal/textextract"
)

// confiancaMinima is the threshold below which a document is routed to
// manual review.
const confiancaMinima = 50.0

var errOCRIndisponivel = errors.New("nenhum provedor de OCR configurado para imagens")

// DocumentoService runs the upload pipeline: storage, text acquisition,
// classification, extraction and persistence.
type DocumentoService struct {
	ocr textextract.Provider // nil disables vision OCR for images
}

func NovoDocumentoService(ocr textextract.Provider) *DocumentoService {
	return &DocumentoService{ocr: ocr}
}

// DocumentoProcessado is the API-facing outcome of one upload. Exactly
// one of Extracao, DCTFWeb or DAS is populated, according to the
// classified type.
type DocumentoProcessado struct {
	ID          uuid.UUID       `json:"id"`
	NomeArquivo string          `json:"nome_arquivo"`
	ContentType string          `json:"content_type,omitempty"`
	Status      models.StatusDocumento `json:"status"`
	Tipo        models.TipoDocumento   `json:"tipo"`

	ScoreClassificacao float64 `json:"score_classificacao"`
	ScoreConfianca     float64 `json:"score_confianca"`

	Extracao *models.ResultadoExtracao `json:"extracao,omitempty"`
	DCTFWeb  *parsers.DCTFWebData      `json:"dctfweb,omitempty"`
	DAS      *parsers.DASData          `json:"das,omitempty"`

	Erros        []string  `json:"erros,omitempty"`
	ArquivoURL   string    `json:"arquivo_url,omitempty"`
	ProcessadoEm time.Time `json:"processado_em"`
}

// ProcessarUpload runs the full pipeline for an uploaded file. Pipeline
// failures (unreadable PDF, no OCR provider for an image) come back as a
// DocumentoProcessado with status erro, not as a Go error; the error
// return covers only infrastructure faults.
func (s *DocumentoService) ProcessarUpload(ctx context.Context, nomeArquivo, contentType string, conteudo []byte, tipoEsperado models.TipoDocumento) (*DocumentoProcessado, error) {
	doc := &DocumentoProcessado{
		ID:           uuid.New(),
		NomeArquivo:  nomeArquivo,
		ContentType:  contentType,
		Tipo:         models.TipoDesconhecido,
		Status:       models.StatusPendente,
		ProcessadoEm: time.Now().UTC(),
	}

	if storage.Client != nil {
		objeto := doc.ID.String() + storage.GetFileExtension(contentType)
		url, err := storage.UploadDocumento(ctx, objeto, bytes.NewReader(conteudo), int64(len(conteudo)), contentType)
		if err != nil {
			log.Printf("Warning: failed to store document %s: %v", doc.ID, err)
		} else {
			doc.ArquivoURL = url
		}
	}

	texto, err := s.adquirirTexto(conteudo, contentType)
	if err != nil {
		doc.Status = models.StatusErro
		doc.Erros = append(doc.Erros, err.Error())
		s.finalizar(ctx, doc, "")
		return doc, nil
	}

	s.processarTexto(doc, texto, tipoEsperado)
	s.finalizar(ctx, doc, texto)
	return doc, nil
}

// ProcessarTexto runs classification and extraction over raw text,
// skipping storage and text acquisition. tipoEsperado overrides the
// classifier when the caller already knows the document type.
func (s *DocumentoService) ProcessarTexto(ctx context.Context, texto string, tipoEsperado models.TipoDocumento) *DocumentoProcessado {
	doc := &DocumentoProcessado{
		ID:           uuid.New(),
		Tipo:         models.TipoDesconhecido,
		Status:       models.StatusPendente,
		ProcessadoEm: time.Now().UTC(),
	}
	s.processarTexto(doc, texto, tipoEsperado)
	s.finalizar(ctx, doc, texto)
	return doc
}

func (s *DocumentoService) adquirirTexto(conteudo []byte, contentType string) (string, error) {
	switch {
	case contentType == "application/pdf" || textextract.PareceCorpoPDF(conteudo):
		return textextract.PDFTexto(conteudo)
	case strings.HasPrefix(contentType, "image/"):
		if s.ocr == nil {
			return "", errOCRIndisponivel
		}
		return s.ocr.ExtrairTexto(conteudo, contentType)
	default:
		return string(conteudo), nil
	}
}

// processarTexto classifies the text and dispatches to the dedicated
// parser when one exists, falling back to generic extraction otherwise.
func (s *DocumentoService) processarTexto(doc *DocumentoProcessado, texto string, tipoEsperado models.TipoDocumento) {
	tipo, score := extract.Classificar(texto)
	if tipoEsperado != models.TipoDesconhecido && tipoEsperado != "" {
		tipo, score = tipoEsperado, 100
	}
	doc.Tipo = tipo
	doc.ScoreClassificacao = score

	switch tipo {
	case models.TipoDCTFWeb:
		dados, err := parsers.ParseDCTFWebTexto(texto)
		if err != nil {
			doc.Status = models.StatusErro
			doc.Erros = append(doc.Erros, err.Error())
			return
		}
		doc.DCTFWeb = dados
		doc.ScoreConfianca = dados.ExtractionConfidence
		doc.Erros = append(doc.Erros, dados.ExtractionErrors...)

	case models.TipoDAS:
		dados, err := parsers.ParseDASTexto(texto)
		if err != nil {
			doc.Status = models.StatusErro
			doc.Erros = append(doc.Erros, err.Error())
			return
		}
		if dados.ExtractionConfidence >= confiancaMinima {
			doc.DAS = dados
			doc.ScoreConfianca = dados.ExtractionConfidence
			doc.Erros = append(doc.Erros, dados.ExtractionErrors...)
			break
		}
		// Parser found too little; the generic extractor sees more
		// field shapes and keeps whatever the DAS layout missed.
		s.extrairGenerico(doc, texto, tipoEsperado)

	default:
		s.extrairGenerico(doc, texto, tipoEsperado)
	}

	if doc.ScoreConfianca >= confiancaMinima {
		doc.Status = models.StatusProcessado
	} else {
		doc.Status = models.StatusRevisao
	}
}

func (s *DocumentoService) extrairGenerico(doc *DocumentoProcessado, texto string, tipoEsperado models.TipoDocumento) {
	resultado := extract.Processar(texto, tipoEsperado)
	doc.Extracao = resultado
	doc.Tipo = resultado.Tipo
	doc.ScoreClassificacao = resultado.ScoreClassificacao
	doc.ScoreConfianca = resultado.ScoreConfianca
	doc.Erros = append(doc.Erros, resultado.Erros...)
}

// finalizar persists the outcome and records metrics.
func (s *DocumentoService) finalizar(ctx context.Context, doc *DocumentoProcessado, texto string) {
	observability.DocumentosProcessados.WithLabelValues(string(doc.Tipo), string(doc.Status)).Inc()
	observability.ConfiancaExtracao.Observe(doc.ScoreConfianca)

	if db.Pool == nil {
		return
	}

	registro := &db.Documento{
		ID:                 doc.ID,
		NomeArquivo:        doc.NomeArquivo,
		ContentType:        doc.ContentType,
		TipoDocumento:      string(doc.Tipo),
		Status:             string(doc.Status),
		ScoreClassificacao: doc.ScoreClassificacao,
		ScoreConfianca:     doc.ScoreConfianca,
		TextoExtraido:      texto,
		ArquivoURL:         doc.ArquivoURL,
	}
	if dados := doc.dadosJSON(); dados != "" {
		registro.DadosJSON = dados
	}

	if err := db.SaveDocumento(ctx, registro); err != nil {
		log.Printf("Warning: failed to persist document %s: %v", doc.ID, err)
	}
}

func (doc *DocumentoProcessado) dadosJSON() string {
	var v any
	switch {
	case doc.DCTFWeb != nil:
		v = doc.DCTFWeb
	case doc.DAS != nil:
		v = doc.DAS
	case doc.Extracao != nil:
		v = doc.Extracao
	default:
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
