package sped

import "fmt"

// toleranciaNotas is the absolute count difference accepted between
// received NF-e and SPED entry records before CRUZ-002 fires.
const toleranciaNotas = 5

// DadosExternos carries the external signals cross-referenced against
// the ledger.
type DadosExternos struct {
	PendenciaEcac     bool `json:"pendencia_ecac"`
	TotalNfeRecebidas int  `json:"total_nfe_recebidas"`
}

// CruzarDadosFiscais compares the ledger summary with e-CAC and NF-e
// data and reports divergences.
func CruzarDadosFiscais(resumo *ResumoSped, externos DadosExternos) []NaoConformidade {
	var divergencias []NaoConformidade

	if externos.PendenciaEcac {
		divergencias = append(divergencias, NaoConformidade{
			Severidade:          SeveridadeCritico,
			Regra:               "CRUZ-001",
			Descricao:           "Pendência identificada no e-CAC",
			ReferenciaDocumento: "Consulta e-CAC",
			SugestaoCorrecao:    "Regularizar pendências junto à RFB",
		})
	}

	diff := externos.TotalNfeRecebidas - resumo.TotalNotasEntrada
	if diff < 0 {
		diff = -diff
	}
	if diff > toleranciaNotas {
		divergencias = append(divergencias, NaoConformidade{
			Severidade:          SeveridadeAviso,
			Regra:               "CRUZ-002",
			Descricao:           "Divergência entre NF-e recebidas e SPED",
			ReferenciaDocumento: fmt.Sprintf("NF-e: %d vs SPED: %d", externos.TotalNfeRecebidas, resumo.TotalNotasEntrada),
			SugestaoCorrecao:    "Verificar notas não escrituradas ou canceladas",
		})
	}

	return divergencias
}
