package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalcularSimplesNacionalFaixaIntermediaria(t *testing.T) {
	r, err := CalcularSimplesNacional(dec("500000"), dec("50000"), AnexoIII, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if r.Status != StatusSucesso {
		t.Fatalf("status = %s", r.Status)
	}
	if !r.Faixa.Limite.Equal(dec("720000")) {
		t.Errorf("faixa limite = %s, esperado 720000", r.Faixa.Limite)
	}
	if !r.Faixa.AliquotaNominal.Equal(dec("13.5")) {
		t.Errorf("alíquota nominal = %s, esperado 13.5", r.Faixa.AliquotaNominal)
	}
	if !r.Faixa.ParcelaDeduzir.Equal(dec("17640")) {
		t.Errorf("parcela a deduzir = %s, esperado 17640", r.Faixa.ParcelaDeduzir)
	}
	// (500000 x 0.135 - 17640) / 500000
	if !r.AliquotaEfetiva.Equal(dec("0.09972")) {
		t.Errorf("alíquota efetiva = %s, esperado 0.09972", r.AliquotaEfetiva)
	}
	if !r.ValorDAS.Equal(dec("4986")) {
		t.Errorf("valor DAS = %s, esperado 4986.00", r.ValorDAS)
	}
	if r.ExcedeSublimiteEstadual || r.ExcedeLimiteNacional {
		t.Error("limites não deveriam estar excedidos")
	}
}

func TestCalcularSimplesNacionalExcedido(t *testing.T) {
	r, err := CalcularSimplesNacional(dec("5000000"), dec("100000"), AnexoI, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if r.Status != StatusExcedido {
		t.Fatalf("status = %s, esperado EXCEDIDO", r.Status)
	}
	if !r.ValorDAS.IsZero() || !r.AliquotaEfetiva.IsZero() {
		t.Errorf("valores deveriam ser zero: das=%s efetiva=%s", r.ValorDAS, r.AliquotaEfetiva)
	}
	if !r.ExcedeLimiteNacional {
		t.Error("excede_limite_nacional deveria ser true")
	}
}

func TestCalcularSimplesNacionalFatorROverrideIdempotente(t *testing.T) {
	fr := dec("0.30")
	viaIII, err := CalcularSimplesNacional(dec("500000"), dec("50000"), AnexoIII, &fr)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	viaV, err := CalcularSimplesNacional(dec("500000"), dec("50000"), AnexoV, &fr)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if viaIII.Anexo != AnexoIII || viaV.Anexo != AnexoIII {
		t.Fatalf("anexos = %s / %s, ambos deveriam resolver para anexo_iii", viaIII.Anexo, viaV.Anexo)
	}
	if !viaIII.ValorDAS.Equal(viaV.ValorDAS) || !viaIII.AliquotaEfetiva.Equal(viaV.AliquotaEfetiva) {
		t.Errorf("resultados divergem: %s vs %s", viaIII.ValorDAS, viaV.ValorDAS)
	}
}

func TestCalcularSimplesNacionalFatorRBaixoForcaAnexoV(t *testing.T) {
	fr := dec("0.20")
	r, err := CalcularSimplesNacional(dec("500000"), dec("50000"), AnexoIII, &fr)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if r.Anexo != AnexoV {
		t.Errorf("anexo = %s, esperado anexo_v", r.Anexo)
	}
}

func TestCalcularSimplesNacionalFatorRNaoAfetaOutrosAnexos(t *testing.T) {
	fr := dec("0.10")
	r, err := CalcularSimplesNacional(dec("500000"), dec("50000"), AnexoI, &fr)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if r.Anexo != AnexoI {
		t.Errorf("anexo = %s, o fator R só rege serviços (III/V)", r.Anexo)
	}
}

func TestCalcularSimplesNacionalAliquotaMinima(t *testing.T) {
	// Receita acumulada zero cai na primeira faixa com alíquota zero,
	// o piso de 4% se aplica mesmo assim.
	r, err := CalcularSimplesNacional(decimal.Zero, dec("1000"), AnexoIII, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !r.AliquotaEfetiva.Equal(dec("0.04")) {
		t.Errorf("alíquota efetiva = %s, esperado piso 0.04", r.AliquotaEfetiva)
	}
	if !r.ValorDAS.Equal(dec("40")) {
		t.Errorf("valor DAS = %s, esperado 40.00", r.ValorDAS)
	}
}

func TestCalcularSimplesNacionalPisoEmTodaFaixa(t *testing.T) {
	receitas := []string{"1", "100000", "180000", "180001", "360000", "500000", "720000", "1800000", "3600000", "3600001", "4800000"}
	for anexo := range TabelaSimples {
		for _, rbt := range receitas {
			r, err := CalcularSimplesNacional(dec(rbt), dec("10000"), anexo, nil)
			if err != nil {
				t.Fatalf("%s/%s: %v", anexo, rbt, err)
			}
			if r.AliquotaEfetiva.LessThan(dec("0.04")) {
				t.Errorf("%s rbt12=%s: alíquota efetiva %s abaixo do piso", anexo, rbt, r.AliquotaEfetiva)
			}
		}
	}
}

func TestCalcularSimplesNacionalArredondamentoMeioParaCima(t *testing.T) {
	// rbt12 de 100000 no anexo I fica exatamente em 4%; 1000.125 x 0.04
	// = 40.005, que arredonda para 40.01.
	r, err := CalcularSimplesNacional(dec("100000"), dec("1000.125"), AnexoI, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !r.ValorDAS.Equal(dec("40.01")) {
		t.Errorf("valor DAS = %s, esperado 40.01", r.ValorDAS)
	}
}

func TestCalcularSimplesNacionalAnexoInvalido(t *testing.T) {
	if _, err := CalcularSimplesNacional(dec("100000"), dec("10000"), Anexo("anexo_x"), nil); err == nil {
		t.Fatal("anexo inexistente deveria retornar erro")
	}
}

func TestCalcularSimplesNacionalSublimiteEstadual(t *testing.T) {
	r, err := CalcularSimplesNacional(dec("3700000"), dec("100000"), AnexoI, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if r.Status != StatusSucesso {
		t.Fatalf("status = %s", r.Status)
	}
	if !r.ExcedeSublimiteEstadual {
		t.Error("excede_sublimite_estadual deveria ser true acima de 3.6M")
	}
	if r.ExcedeLimiteNacional {
		t.Error("limite nacional não foi excedido")
	}
}

func TestCalcularFatorR(t *testing.T) {
	r := CalcularFatorR(dec("140000"), dec("500000"))
	if r.Status != StatusSucesso {
		t.Fatalf("status = %s", r.Status)
	}
	if !r.FatorR.Equal(dec("0.28")) {
		t.Errorf("fator_r = %s, esperado 0.28", r.FatorR)
	}
	if r.Enquadramento != "ANEXO_III" || !r.BeneficiaAnexoIII {
		t.Errorf("enquadramento = %s, esperado ANEXO_III", r.Enquadramento)
	}
}

func TestCalcularFatorRAbaixoDoCorte(t *testing.T) {
	r := CalcularFatorR(dec("100000"), dec("500000"))
	if r.Enquadramento != "ANEXO_V" || r.BeneficiaAnexoIII {
		t.Errorf("enquadramento = %s, esperado ANEXO_V", r.Enquadramento)
	}
	if !r.FatorRPercentual.Equal(dec("20")) {
		t.Errorf("percentual = %s, esperado 20", r.FatorRPercentual)
	}
}

func TestCalcularFatorRArredondaQuatroCasas(t *testing.T) {
	r := CalcularFatorR(dec("1"), dec("3"))
	if !r.FatorR.Equal(dec("0.3333")) {
		t.Errorf("fator_r = %s, esperado 0.3333", r.FatorR)
	}
}

func TestCalcularFatorRReceitaZero(t *testing.T) {
	r := CalcularFatorR(dec("100000"), decimal.Zero)
	if r.Status != StatusErro {
		t.Fatalf("status = %s, esperado ERRO", r.Status)
	}
	if r.Mensagem == "" {
		t.Error("mensagem de erro vazia")
	}
}

func TestSimularEconomiaFatorR(t *testing.T) {
	s, err := SimularEconomiaFatorR(dec("500000"), dec("50000"), dec("100000"))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if s.Status != StatusSucesso {
		t.Fatalf("status = %s", s.Status)
	}

	if s.CenarioAtual.Anexo != "V" {
		t.Errorf("cenário atual anexo = %s, fator 20%% deveria cair no V", s.CenarioAtual.Anexo)
	}
	if !s.CenarioAtual.DASMensal.Equal(dec("8760")) {
		t.Errorf("das atual = %s, esperado 8760.00", s.CenarioAtual.DASMensal)
	}
	if !s.CenarioOtimizado.DASMensal.Equal(dec("4986")) {
		t.Errorf("das otimizado = %s, esperado 4986.00", s.CenarioOtimizado.DASMensal)
	}
	if !s.CenarioOtimizado.FolhaNecessaria12M.Equal(dec("140000")) {
		t.Errorf("folha necessária = %s, esperado 140000", s.CenarioOtimizado.FolhaNecessaria12M)
	}
	if !s.CenarioOtimizado.AumentoFolhaNecessario.Equal(dec("40000")) {
		t.Errorf("aumento folha = %s, esperado 40000", s.CenarioOtimizado.AumentoFolhaNecessario)
	}
	if !s.EconomiaPotencial.Mensal.Equal(dec("3774")) {
		t.Errorf("economia mensal = %s, esperado 3774.00", s.EconomiaPotencial.Mensal)
	}
	if !s.EconomiaPotencial.Anual.Equal(dec("45288")) {
		t.Errorf("economia anual = %s, esperado 45288.00", s.EconomiaPotencial.Anual)
	}
	if s.Recomendacao != "Aumentar folha de salários" {
		t.Errorf("recomendação = %q", s.Recomendacao)
	}
}

func TestSimularEconomiaFatorRJaEnquadrado(t *testing.T) {
	s, err := SimularEconomiaFatorR(dec("500000"), dec("50000"), dec("200000"))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if s.CenarioAtual.Anexo != "III" {
		t.Errorf("cenário atual anexo = %s", s.CenarioAtual.Anexo)
	}
	if !s.CenarioOtimizado.AumentoFolhaNecessario.IsZero() {
		t.Errorf("aumento folha = %s, esperado 0", s.CenarioOtimizado.AumentoFolhaNecessario)
	}
	if s.Recomendacao != "Já enquadrado no Anexo III" {
		t.Errorf("recomendação = %q", s.Recomendacao)
	}
}

func TestTabelaSimplesInvariantes(t *testing.T) {
	for anexo, faixas := range TabelaSimples {
		if len(faixas) != 6 {
			t.Fatalf("%s: %d faixas", anexo, len(faixas))
		}
		for i := 1; i < len(faixas); i++ {
			if !faixas[i].Limite.GreaterThan(faixas[i-1].Limite) {
				t.Errorf("%s: limites não crescem em %d", anexo, i)
			}
		}
		if !faixas[len(faixas)-1].Limite.Equal(LimiteSimples) {
			t.Errorf("%s: última faixa %s difere do limite legal", anexo, faixas[len(faixas)-1].Limite)
		}
	}
}
