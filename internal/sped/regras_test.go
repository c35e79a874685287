package sped

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func resumoLimpo() *ResumoSped {
	return &ResumoSped{
		CNPJ:              "11.222.333/0001-81",
		Periodo:           "12/2025",
		TotalNotasEntrada: 3,
		TotalNotasSaida:   1,
		TemBlocoH:         true,
		ValorTotalICMS:    decimal.Zero,
	}
}

func TestAuditarResumoLimpo(t *testing.T) {
	achados := Auditar(AuditoriaSpedFiscal, resumoLimpo())
	if len(achados) != 0 {
		t.Fatalf("achados inesperados: %+v", achados)
	}
}

func TestAuditarRegrasFiscais(t *testing.T) {
	resumo := resumoLimpo()
	resumo.TemBlocoH = false
	resumo.NCMsInvalidos = 2
	resumo.DivergenciasAliquota = 1
	resumo.CFOPsInconsistentes = 3
	resumo.BasesZeradasComImposto = 1

	achados := Auditar(AuditoriaSpedFiscal, resumo)
	if len(achados) != 5 {
		t.Fatalf("achados = %d, esperado 5", len(achados))
	}

	porRegra := map[string]NaoConformidade{}
	for _, nc := range achados {
		porRegra[nc.Regra] = nc
	}

	if nc := porRegra["SPED-F001"]; nc.Severidade != SeveridadeCritico {
		t.Errorf("F001 severidade = %s", nc.Severidade)
	}
	if nc := porRegra["SPED-F002"]; nc.Severidade != SeveridadeAviso ||
		nc.ReferenciaDocumento != "2 NCMs inválidos encontrados" {
		t.Errorf("F002 = %+v", nc)
	}
	if nc := porRegra["SPED-F003"]; nc.Severidade != SeveridadeCritico {
		t.Errorf("F003 severidade = %s", nc.Severidade)
	}
	if nc := porRegra["SPED-F005"]; nc.Severidade != SeveridadeCritico {
		t.Errorf("F005 severidade = %s", nc.Severidade)
	}
	if nc := porRegra["SPED-F004"]; nc.SugestaoCorrecao != "Revisar e corrigir: Verificar consistência CFOP x natureza operação" {
		t.Errorf("F004 sugestão = %q", nc.SugestaoCorrecao)
	}
}

func TestAuditarRegrasContribuicoes(t *testing.T) {
	resumo := resumoLimpo()
	resumo.CSTsInconsistentes = 1
	resumo.CreditosSuspeitos = 2
	resumo.ReceitasNaoTributadas = 1

	achados := Auditar(AuditoriaSpedContribuicoes, resumo)
	if len(achados) != 3 {
		t.Fatalf("achados = %d, esperado 3", len(achados))
	}
	codigos := map[string]bool{}
	for _, nc := range achados {
		codigos[nc.Regra] = true
	}
	for _, esperado := range []string{"SPED-C001", "SPED-C002", "SPED-C003"} {
		if !codigos[esperado] {
			t.Errorf("regra %s não disparou", esperado)
		}
	}
}

func TestAuditarRegrasIndependentes(t *testing.T) {
	// Um contador zerado não suprime as demais regras.
	resumo := resumoLimpo()
	resumo.TemBlocoH = false
	resumo.BasesZeradasComImposto = 1

	achados := Auditar(AuditoriaSpedFiscal, resumo)
	if len(achados) != 2 {
		t.Fatalf("achados = %d, esperado F001 e F005", len(achados))
	}
}

func TestRegrasParaTipoTextual(t *testing.T) {
	if len(RegrasPara(TipoAuditoria("sped contribuições mensal"))) != len(RegrasSpedContribuicoes) {
		t.Error("tipo com 'contribui' deveria selecionar o registro de Contribuições")
	}
	if len(RegrasPara(TipoAuditoria("SPED Fiscal"))) != len(RegrasSpedFiscal) {
		t.Error("tipo fiscal deveria selecionar o registro Fiscal")
	}
}
