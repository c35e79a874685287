package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Auditoria is the persisted record of a SPED audit run.
type Auditoria struct {
	ID                uuid.UUID `json:"id"`
	CNPJ              string    `json:"cnpj"`
	Periodo           string    `json:"periodo"`
	TipoAuditoria     string    `json:"tipo_auditoria"`
	ScoreConformidade float64   `json:"score_conformidade"`
	TotalCriticos     int       `json:"total_criticos"`
	TotalAvisos       int       `json:"total_avisos"`
	RelatorioJSON     string    `json:"relatorio_json"`
	CreatedAt         time.Time `json:"created_at"`
}

func SaveAuditoria(ctx context.Context, aud *Auditoria) error {
	query := `
		INSERT INTO auditorias (
			id, cnpj, periodo, tipo_auditoria, score_conformidade,
			total_criticos, total_avisos, relatorio_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return Pool.QueryRow(ctx, query,
		aud.ID, aud.CNPJ, aud.Periodo, aud.TipoAuditoria, aud.ScoreConformidade,
		aud.TotalCriticos, aud.TotalAvisos, aud.RelatorioJSON,
	).Scan(&aud.CreatedAt)
}

func GetAuditorias(ctx context.Context, limit int) ([]Auditoria, error) {
	query := `
		SELECT id, COALESCE(cnpj, ''), COALESCE(periodo, ''), COALESCE(tipo_auditoria, ''),
		       COALESCE(score_conformidade, 0), COALESCE(total_criticos, 0),
		       COALESCE(total_avisos, 0), created_at
		FROM auditorias
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditorias []Auditoria
	for rows.Next() {
		var aud Auditoria
		err := rows.Scan(
			&aud.ID, &aud.CNPJ, &aud.Periodo, &aud.TipoAuditoria,
			&aud.ScoreConformidade, &aud.TotalCriticos,
			&aud.TotalAvisos, &aud.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		auditorias = append(auditorias, aud)
	}

	return auditorias, rows.Err()
}

// GetAuditoriaByID retrieves a single audit, including the full report.
func GetAuditoriaByID(ctx context.Context, auditoriaID string) (*Auditoria, error) {
	query := `
		SELECT id, COALESCE(cnpj, ''), COALESCE(periodo, ''), COALESCE(tipo_auditoria, ''),
		       COALESCE(score_conformidade, 0), COALESCE(total_criticos, 0),
		       COALESCE(total_avisos, 0), COALESCE(relatorio_json::text, ''), created_at
		FROM auditorias
		WHERE id = $1
	`

	var aud Auditoria
	err := Pool.QueryRow(ctx, query, auditoriaID).Scan(
		&aud.ID, &aud.CNPJ, &aud.Periodo, &aud.TipoAuditoria,
		&aud.ScoreConformidade, &aud.TotalCriticos,
		&aud.TotalAvisos, &aud.RelatorioJSON, &aud.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &aud, nil
}

// LatestScoreForCNPJ returns the most recent conformity score of a company,
// or -1 when no audit exists.
func LatestScoreForCNPJ(ctx context.Context, cnpj string) (float64, time.Time, error) {
	query := `
		SELECT score_conformidade, created_at
		FROM auditorias
		WHERE cnpj = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var score float64
	var quando time.Time
	err := Pool.QueryRow(ctx, query, cnpj).Scan(&score, &quando)
	if err != nil {
		return -1, time.Time{}, err
	}
	return score, quando, nil
}
