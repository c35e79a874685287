package sped

import "testing"

func TestGerarRelatorioSemAchados(t *testing.T) {
	rel := GerarRelatorio(nil, resumoLimpo())

	if rel.ScoreConformidade != 100 {
		t.Errorf("score = %v, esperado 100", rel.ScoreConformidade)
	}
	if rel.TotalNaoConformidades != 0 {
		t.Errorf("total = %d", rel.TotalNaoConformidades)
	}
	if rel.NaoConformidades == nil {
		t.Error("lista de não conformidades deveria ser vazia, não nula")
	}
	if rel.RecomendacaoGeral != "Excelente conformidade. Manter monitoramento regular." {
		t.Errorf("recomendação = %q", rel.RecomendacaoGeral)
	}
	if rel.CNPJ != "11.222.333/0001-81" || rel.Periodo != "12/2025" {
		t.Errorf("identificação = %s / %s", rel.CNPJ, rel.Periodo)
	}
}

func TestGerarRelatorioUmCritico(t *testing.T) {
	achados := []NaoConformidade{
		{Severidade: SeveridadeCritico, Regra: "CRUZ-001", Descricao: "Pendência identificada no e-CAC"},
	}
	rel := GerarRelatorio(achados, resumoLimpo())

	if rel.ScoreConformidade != 90 {
		t.Fatalf("score = %v, esperado 90", rel.ScoreConformidade)
	}
	// Limite inferior inclusivo: 90 ainda é a faixa "excelente".
	if rel.RecomendacaoGeral != "Excelente conformidade. Manter monitoramento regular." {
		t.Errorf("recomendação = %q", rel.RecomendacaoGeral)
	}
	if rel.PorSeveridade.Critico != 1 || rel.PorSeveridade.Aviso != 0 {
		t.Errorf("contagem = %+v", rel.PorSeveridade)
	}
}

func TestGerarRelatorioFaixas(t *testing.T) {
	casos := []struct {
		criticos, avisos, informativos int
		score                          float64
		recomendacao                   string
	}{
		{0, 2, 0, 90, "Excelente conformidade. Manter monitoramento regular."},
		{2, 1, 0, 75, "Boa conformidade. Corrigir avisos identificados."},
		{4, 1, 2, 53, "Conformidade moderada. Priorizar correção de itens críticos."},
		{5, 2, 0, 40, "Conformidade baixa. AÇÃO URGENTE: Regularizar itens críticos imediatamente."},
		{12, 0, 0, 0, "Conformidade baixa. AÇÃO URGENTE: Regularizar itens críticos imediatamente."},
	}

	for _, c := range casos {
		var achados []NaoConformidade
		for i := 0; i < c.criticos; i++ {
			achados = append(achados, NaoConformidade{Severidade: SeveridadeCritico, Regra: "X"})
		}
		for i := 0; i < c.avisos; i++ {
			achados = append(achados, NaoConformidade{Severidade: SeveridadeAviso, Regra: "X"})
		}
		for i := 0; i < c.informativos; i++ {
			achados = append(achados, NaoConformidade{Severidade: SeveridadeInformativo, Regra: "X"})
		}

		rel := GerarRelatorio(achados, resumoLimpo())
		if rel.ScoreConformidade != c.score {
			t.Errorf("%d/%d/%d: score = %v, esperado %v", c.criticos, c.avisos, c.informativos, rel.ScoreConformidade, c.score)
		}
		if rel.RecomendacaoGeral != c.recomendacao {
			t.Errorf("%d/%d/%d: recomendação = %q", c.criticos, c.avisos, c.informativos, rel.RecomendacaoGeral)
		}
	}
}

func TestCruzarDadosFiscais(t *testing.T) {
	resumo := resumoLimpo() // 3 notas de entrada

	// Diferença de 5 fica dentro da tolerância.
	if d := CruzarDadosFiscais(resumo, DadosExternos{TotalNfeRecebidas: 8}); len(d) != 0 {
		t.Errorf("diferença 5 gerou divergência: %+v", d)
	}

	// Diferença de 6 dispara o aviso.
	d := CruzarDadosFiscais(resumo, DadosExternos{TotalNfeRecebidas: 9})
	if len(d) != 1 {
		t.Fatalf("divergências = %d, esperado 1", len(d))
	}
	if d[0].Regra != "CRUZ-002" || d[0].Severidade != SeveridadeAviso {
		t.Errorf("divergência = %+v", d[0])
	}
	if d[0].ReferenciaDocumento != "NF-e: 9 vs SPED: 3" {
		t.Errorf("referência = %q", d[0].ReferenciaDocumento)
	}
}

func TestCruzarPendenciaEcac(t *testing.T) {
	d := CruzarDadosFiscais(resumoLimpo(), DadosExternos{PendenciaEcac: true, TotalNfeRecebidas: 3})
	if len(d) != 1 {
		t.Fatalf("divergências = %d, esperado 1", len(d))
	}
	if d[0].Regra != "CRUZ-001" || d[0].Severidade != SeveridadeCritico {
		t.Errorf("divergência = %+v", d[0])
	}
}

func TestAuditoriaFimAFim(t *testing.T) {
	resumo, err := ParseTexto(arquivoFiscalProblemas)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	achados := Auditar(AuditoriaSpedFiscal, resumo)
	achados = append(achados, CruzarDadosFiscais(resumo, DadosExternos{TotalNfeRecebidas: 1})...)
	rel := GerarRelatorio(achados, resumo)

	// F001, F003 e F005 críticos; F002 e F004 avisos: 100 - 30 - 10 = 60.
	if rel.ScoreConformidade != 60 {
		t.Errorf("score = %v, esperado 60", rel.ScoreConformidade)
	}
	if rel.RecomendacaoGeral != "Conformidade moderada. Priorizar correção de itens críticos." {
		t.Errorf("recomendação = %q", rel.RecomendacaoGeral)
	}
}
