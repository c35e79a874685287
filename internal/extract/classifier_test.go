package extract

import (
	"testing"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

func TestClassificarNFE(t *testing.T) {
	texto := `DANFE - Documento Auxiliar da Nota Fiscal Eletrônica
NF-e Nº 12345
Chave de Acesso: 35200114200166000187550010000000015123456789`

	tipo, score := Classificar(texto)
	if tipo != models.TipoNFE {
		t.Fatalf("tipo = %s, esperado nfe", tipo)
	}
	if score < 75 {
		t.Errorf("score = %v, esperado >= 75", score)
	}
}

func TestClassificarDAS(t *testing.T) {
	texto := `DAS
CNPJ: 12.345.678/0001-00
Período de Apuração: 12/2025
Valor Total: R$ 850,00`

	tipo, score := Classificar(texto)
	if tipo != models.TipoDAS {
		t.Fatalf("tipo = %s, esperado das", tipo)
	}
	if score < 75 {
		t.Errorf("score = %v, esperado >= 75", score)
	}
}

func TestClassificarScoreMaximo(t *testing.T) {
	// All four NFE patterns; repeats of a pattern count once.
	texto := `nota fiscal eletrônica nf-e nfe danfe danfe
chave de acesso 35200114200166000187550010000000015123456789`

	_, score := Classificar(texto)
	if score != 100 {
		t.Errorf("score = %v, esperado 100", score)
	}
}

func TestClassificarDesconhecido(t *testing.T) {
	tipo, score := Classificar("relatório interno sem qualquer marcador conhecido")
	if tipo != models.TipoDesconhecido {
		t.Errorf("tipo = %s, esperado desconhecido", tipo)
	}
	if score != 0 {
		t.Errorf("score = %v, esperado 0", score)
	}
}

func TestClassificarDeterministico(t *testing.T) {
	texto := `DCTFWeb - Declaração de Débitos e Créditos Tributários Federais
CNPJ: 11.222.333/0001-81`

	tipoRef, scoreRef := Classificar(texto)
	for i := 0; i < 50; i++ {
		tipo, score := Classificar(texto)
		if tipo != tipoRef || score != scoreRef {
			t.Fatalf("iteração %d: (%s, %v) != (%s, %v)", i, tipo, score, tipoRef, scoreRef)
		}
	}
}

func TestClassificarEmpateOrdemRegistro(t *testing.T) {
	// "inss" alone scores 25 for gps; "darf" alone scores 25 for darf.
	// darf is registered first, so the tie resolves to darf.
	tipo, score := Classificar("darf inss")
	if score != 25 {
		t.Fatalf("score = %v, esperado 25", score)
	}
	if tipo != models.TipoDARF {
		t.Errorf("tipo = %s, esperado darf (primeiro registrado)", tipo)
	}
}
