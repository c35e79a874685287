package parsers

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

const textoDCTFWebCompleto = `DCTFWeb - Declaração de Débitos e Créditos Tributários Federais
Razão Social: EMPRESA EXEMPLO LTDA
CNPJ: 11.222.333/0001-81
Período de Apuração: 11/2025
Valor Total: R$ 4.321,09
Data de Vencimento: 20/12/2025
Número do Recibo: 98765.4321
Situação: Transmitida`

func TestParseDCTFWebCompleto(t *testing.T) {
	data, err := ParseDCTFWebTexto(textoDCTFWebCompleto)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if data.CNPJ != "11.222.333/0001-81" {
		t.Errorf("cnpj = %q", data.CNPJ)
	}
	if data.PeriodoApuracao != "11/2025" || data.Mes != 11 || data.Ano != 2025 {
		t.Errorf("período = %q (%d/%d)", data.PeriodoApuracao, data.Mes, data.Ano)
	}
	if !data.ValorTotal.Equal(decimal.RequireFromString("4321.09")) {
		t.Errorf("valor_total = %s", data.ValorTotal)
	}
	if data.DataVencimento == nil || data.DataVencimento.Format("02/01/2006") != "20/12/2025" {
		t.Errorf("data_vencimento = %v", data.DataVencimento)
	}
	if data.NumeroRecibo != "98765.4321" {
		t.Errorf("recibo = %q", data.NumeroRecibo)
	}
	if data.Situacao != "Transmitida" {
		t.Errorf("situação = %q", data.Situacao)
	}
	if data.TipoDeclaracao != "DCTFWeb Mensal" {
		t.Errorf("tipo = %q", data.TipoDeclaracao)
	}
	if data.ExtractionConfidence != 100 {
		t.Errorf("confiança = %v, esperado 100", data.ExtractionConfidence)
	}
	if len(data.ExtractionErrors) != 0 {
		t.Errorf("erros inesperados: %v", data.ExtractionErrors)
	}
}

func TestParseDCTFWebParcial(t *testing.T) {
	texto := `DCTFWeb
CNPJ: 11.222.333/0001-81
Período de Apuração: 11/2025
Valor Total: R$ 100,00
Vencimento: 20/12/2025`

	data, err := ParseDCTFWebTexto(texto)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	esperado := float64(4) / 6 * 100
	if math.Abs(data.ExtractionConfidence-esperado) > 1e-9 {
		t.Errorf("confiança = %v, esperado %v", data.ExtractionConfidence, esperado)
	}
}

func TestParseDCTFWebTipoDeclaracao(t *testing.T) {
	casos := []struct {
		texto    string
		esperado string
	}{
		{"DCTFWeb Anual exercício encerrado", "DCTFWeb Anual"},
		{"DCTFWeb referente ao 13º salário", "DCTFWeb 13º"},
		{"DCTFWeb Retificadora da competência anterior", "DCTFWeb Retificadora"},
		{"DCTFWeb competência corrente", "DCTFWeb Mensal"},
	}
	for _, c := range casos {
		data, err := ParseDCTFWebTexto(c.texto)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if data.TipoDeclaracao != c.esperado {
			t.Errorf("tipo para %q = %q, esperado %q", c.texto, data.TipoDeclaracao, c.esperado)
		}
	}
}

func TestParseDCTFWebTextoVazio(t *testing.T) {
	if _, err := ParseDCTFWebTexto("   \n "); !errors.Is(err, ErrParse) {
		t.Errorf("erro = %v, esperado ErrParse", err)
	}
}

func TestParseDCTFWebBytesIlegiveis(t *testing.T) {
	if _, err := ParseDCTFWebBytes([]byte("isto não é um pdf")); !errors.Is(err, ErrParse) {
		t.Errorf("erro = %v, esperado ErrParse", err)
	}
}
