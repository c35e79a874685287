package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Documento is the persisted record of a processed fiscal document.
type Documento struct {
	ID                 uuid.UUID  `json:"id"`
	NomeArquivo        string     `json:"nome_arquivo"`
	ContentType        string     `json:"content_type"`
	TipoDocumento      string     `json:"tipo_documento"`
	Status             string     `json:"status"`
	ScoreClassificacao float64    `json:"score_classificacao"`
	ScoreConfianca     float64    `json:"score_confianca"`
	DadosJSON          string     `json:"dados_json"`
	TextoExtraido      string     `json:"texto_extraido,omitempty"`
	ArquivoURL         string     `json:"arquivo_url"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func SaveDocumento(ctx context.Context, doc *Documento) error {
	query := `
		INSERT INTO documentos (
			id, nome_arquivo, content_type, tipo_documento, status,
			score_classificacao, score_confianca, dados_json, texto_extraido, arquivo_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	return Pool.QueryRow(ctx, query,
		doc.ID, doc.NomeArquivo, doc.ContentType, doc.TipoDocumento, doc.Status,
		doc.ScoreClassificacao, doc.ScoreConfianca, doc.DadosJSON, doc.TextoExtraido, doc.ArquivoURL,
	).Scan(&doc.CreatedAt)
}

func GetDocumentos(ctx context.Context, limit int) ([]Documento, error) {
	query := `
		SELECT id, COALESCE(nome_arquivo, ''), COALESCE(content_type, ''),
		       COALESCE(tipo_documento, ''), COALESCE(status, ''),
		       COALESCE(score_classificacao, 0), COALESCE(score_confianca, 0),
		       COALESCE(arquivo_url, ''), created_at
		FROM documentos
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documentos []Documento
	for rows.Next() {
		var doc Documento
		err := rows.Scan(
			&doc.ID, &doc.NomeArquivo, &doc.ContentType,
			&doc.TipoDocumento, &doc.Status,
			&doc.ScoreClassificacao, &doc.ScoreConfianca,
			&doc.ArquivoURL, &doc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		documentos = append(documentos, doc)
	}

	return documentos, rows.Err()
}

// GetDocumentoByID retrieves a single document, including extracted data.
func GetDocumentoByID(ctx context.Context, documentoID string) (*Documento, error) {
	query := `
		SELECT id, COALESCE(nome_arquivo, ''), COALESCE(content_type, ''),
		       COALESCE(tipo_documento, ''), COALESCE(status, ''),
		       COALESCE(score_classificacao, 0), COALESCE(score_confianca, 0),
		       COALESCE(dados_json::text, ''), COALESCE(texto_extraido, ''),
		       COALESCE(arquivo_url, ''), created_at, updated_at
		FROM documentos
		WHERE id = $1
	`

	var doc Documento
	err := Pool.QueryRow(ctx, query, documentoID).Scan(
		&doc.ID, &doc.NomeArquivo, &doc.ContentType,
		&doc.TipoDocumento, &doc.Status,
		&doc.ScoreClassificacao, &doc.ScoreConfianca,
		&doc.DadosJSON, &doc.TextoExtraido,
		&doc.ArquivoURL, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocumentoStatus marks a document after manual review.
func UpdateDocumentoStatus(ctx context.Context, documentoID string, status string) error {
	query := `UPDATE documentos SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := Pool.Exec(ctx, query, status, time.Now(), documentoID)
	return err
}

// DeleteDocumento removes a document record.
func DeleteDocumento(ctx context.Context, documentoID string) error {
	_, err := Pool.Exec(ctx, `DELETE FROM documentos WHERE id = $1`, documentoID)
	return err
}

// DocumentoStats represents monthly processing statistics
type DocumentoStats struct {
	Month              string  `json:"month"`
	TotalDocumentos    int     `json:"total_documentos"`
	TotalProcessados   int     `json:"total_processados"`
	TotalRevisao       int     `json:"total_revisao"`
	ConfiancaMedia     float64 `json:"confianca_media"`
}

// GetDocumentoStats returns statistics for the current month
func GetDocumentoStats(ctx context.Context) (*DocumentoStats, error) {
	query := `
		SELECT
			COUNT(*) as total_documentos,
			COUNT(*) FILTER (WHERE status = 'processado') as total_processados,
			COUNT(*) FILTER (WHERE status = 'revisao_necessaria') as total_revisao,
			COALESCE(AVG(score_confianca), 0) as confianca_media
		FROM documentos
		WHERE DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
	`

	stats := &DocumentoStats{
		Month: time.Now().Format("2006-01"),
	}

	err := Pool.QueryRow(ctx, query).Scan(
		&stats.TotalDocumentos,
		&stats.TotalProcessados,
		&stats.TotalRevisao,
		&stats.ConfiancaMedia,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
