package sped

import "time"

// Penalidades por severidade na composição do score.
const (
	penalidadeCritico     = 10
	penalidadeAviso       = 5
	penalidadeInformativo = 1
)

// ContagemSeveridade counts findings per severity.
type ContagemSeveridade struct {
	Critico     int `json:"critico"`
	Aviso       int `json:"aviso"`
	Informativo int `json:"informativo"`
}

// RelatorioConformidade is the consolidated audit outcome.
type RelatorioConformidade struct {
	CNPJ                  string             `json:"cnpj"`
	Periodo               string             `json:"periodo"`
	DataAuditoria         time.Time          `json:"data_auditoria"`
	ScoreConformidade     float64            `json:"score_conformidade"`
	TotalNaoConformidades int                `json:"total_nao_conformidades"`
	PorSeveridade         ContagemSeveridade `json:"por_severidade"`
	NaoConformidades      []NaoConformidade  `json:"nao_conformidades"`
	RecomendacaoGeral     string             `json:"recomendacao_geral"`
}

// GerarRelatorio consolidates findings into a 0-100 conformity score.
// Zero findings score exactly 100; each crítico costs 10 points, aviso 5
// and informativo 1, floored at zero.
func GerarRelatorio(naoConformidades []NaoConformidade, resumo *ResumoSped) *RelatorioConformidade {
	var contagem ContagemSeveridade
	for _, nc := range naoConformidades {
		switch nc.Severidade {
		case SeveridadeCritico:
			contagem.Critico++
		case SeveridadeAviso:
			contagem.Aviso++
		case SeveridadeInformativo:
			contagem.Informativo++
		}
	}

	score := 100.0
	if len(naoConformidades) > 0 {
		penalidade := contagem.Critico*penalidadeCritico +
			contagem.Aviso*penalidadeAviso +
			contagem.Informativo*penalidadeInformativo
		score = float64(100 - penalidade)
		if score < 0 {
			score = 0
		}
	}

	if naoConformidades == nil {
		naoConformidades = []NaoConformidade{}
	}

	return &RelatorioConformidade{
		CNPJ:                  resumo.CNPJ,
		Periodo:               resumo.Periodo,
		DataAuditoria:         time.Now().UTC(),
		ScoreConformidade:     score,
		TotalNaoConformidades: len(naoConformidades),
		PorSeveridade:         contagem,
		NaoConformidades:      naoConformidades,
		RecomendacaoGeral:     recomendacao(score),
	}
}

// Faixas de recomendação com limites inferiores inclusivos.
func recomendacao(score float64) string {
	switch {
	case score >= 90:
		return "Excelente conformidade. Manter monitoramento regular."
	case score >= 70:
		return "Boa conformidade. Corrigir avisos identificados."
	case score >= 50:
		return "Conformidade moderada. Priorizar correção de itens críticos."
	default:
		return "Conformidade baixa. AÇÃO URGENTE: Regularizar itens críticos imediatamente."
	}
}
