package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/contaflow/fiscal-doc-service/internal/db"
	"github.com/contaflow/fiscal-doc-service/internal/observability"
	"github.com/contaflow/fiscal-doc-service/internal/sped"
)

// ResultadoAuditoria is the API-facing outcome of one SPED audit run.
type ResultadoAuditoria struct {
	ID        uuid.UUID                   `json:"id"`
	Tipo      sped.TipoAuditoria          `json:"tipo_auditoria"`
	Resumo    *sped.ResumoSped            `json:"resumo"`
	Relatorio *sped.RelatorioConformidade `json:"relatorio"`
}

// ExecutarAuditoria parses a SPED file, runs the rule set for the given
// audit type, cross-checks against external data and consolidates the
// conformity report.
func ExecutarAuditoria(ctx context.Context, tipo sped.TipoAuditoria, arquivo io.Reader, externos sped.DadosExternos) (*ResultadoAuditoria, error) {
	resumo, err := sped.Parse(arquivo)
	if err != nil {
		return nil, fmt.Errorf("auditoria %s: %w", tipo, err)
	}

	achados := sped.Auditar(tipo, resumo)
	achados = append(achados, sped.CruzarDadosFiscais(resumo, externos)...)
	relatorio := sped.GerarRelatorio(achados, resumo)

	resultado := &ResultadoAuditoria{
		ID:        uuid.New(),
		Tipo:      tipo,
		Resumo:    resumo,
		Relatorio: relatorio,
	}

	observability.AuditoriasRealizadas.WithLabelValues(string(tipo)).Inc()
	observability.ScoreConformidade.Observe(relatorio.ScoreConformidade)

	if db.Pool != nil {
		persistirAuditoria(ctx, resultado)
	}
	return resultado, nil
}

func persistirAuditoria(ctx context.Context, resultado *ResultadoAuditoria) {
	relatorioJSON, err := json.Marshal(resultado.Relatorio)
	if err != nil {
		log.Printf("Warning: failed to encode audit report %s: %v", resultado.ID, err)
		return
	}

	registro := &db.Auditoria{
		ID:                resultado.ID,
		CNPJ:              resultado.Relatorio.CNPJ,
		Periodo:           resultado.Relatorio.Periodo,
		TipoAuditoria:     string(resultado.Tipo),
		ScoreConformidade: resultado.Relatorio.ScoreConformidade,
		TotalCriticos:     resultado.Relatorio.PorSeveridade.Critico,
		TotalAvisos:       resultado.Relatorio.PorSeveridade.Aviso,
		RelatorioJSON:     string(relatorioJSON),
	}

	if err := db.SaveAuditoria(ctx, registro); err != nil {
		log.Printf("Warning: failed to persist audit %s: %v", resultado.ID, err)
	}
}
