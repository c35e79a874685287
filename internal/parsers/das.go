package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/extract"
)

// DASData holds the fields extracted from a DAS payment slip.
type DASData struct {
	CNPJ            string `json:"cnpj"`
	PeriodoApuracao string `json:"periodo_apuracao"`
	Ano             int    `json:"ano,omitempty"`
	Mes             int    `json:"mes,omitempty"`

	ValorTotal     decimal.Decimal `json:"valor_total"`
	DataVencimento *time.Time      `json:"data_vencimento,omitempty"`

	LinhaDigitavel string `json:"linha_digitavel,omitempty"`
	AnexoSimples   string `json:"anexo_simples,omitempty"`

	ExtractionConfidence float64  `json:"extraction_confidence"`
	ExtractionErrors     []string `json:"extraction_errors,omitempty"`
}

// Five fields drive the confidence score; the annex is bonus metadata.
const dasCamposEsperados = 5

var dasPadroes = map[string][]*regexp.Regexp{
	"cnpj": {
		regexp.MustCompile(`(?i)CNPJ[:\s]+([0-9]{2}[.][0-9]{3}[.][0-9]{3}[/][0-9]{4}[-][0-9]{2})`),
		regexp.MustCompile(`(?i)([0-9]{2}[.][0-9]{3}[.][0-9]{3}[/][0-9]{4}[-][0-9]{2})`),
	},
	"periodo": {
		regexp.MustCompile(`(?i)Per[íi]odo\s*(?:de\s*)?Apura[çc][ãa]o[:\s]*([0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)Compet[êe]ncia[:\s]*([0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)PA[:\s]*([0-9]{2}[/][0-9]{4})`),
	},
	"valor_total": {
		regexp.MustCompile(`(?i)Valor\s*(?:Total|do\s*Documento)[:\s]*R?\$?\s*([0-9.,]+)`),
		regexp.MustCompile(`(?i)TOTAL[:\s]*R?\$?\s*([0-9.,]+)`),
	},
	"vencimento": {
		regexp.MustCompile(`(?i)Vencimento[:\s]*([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)Data\s*(?:de\s*)?Vencimento[:\s]*([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
	},
	"linha_digitavel": {
		regexp.MustCompile(`([0-9]{5}[.][0-9]{5}\s*[0-9]{5}[.][0-9]{6}\s*[0-9]{5}[.][0-9]{6}\s*[0-9]\s*[0-9]{14})`),
		regexp.MustCompile(`([0-9]{47,48})`),
	},
	"anexo": {
		regexp.MustCompile(`(?i)Anexo\s*([IVX]+)`),
	},
}

// ParseDASBytes extracts DAS data from PDF bytes.
func ParseDASBytes(conteudo []byte) (*DASData, error) {
	texto, err := textoDePDF(conteudo)
	if err != nil {
		return nil, err
	}
	return ParseDASTexto(texto)
}

// ParseDASTexto extracts DAS data from already-acquired text.
func ParseDASTexto(texto string) (*DASData, error) {
	if strings.TrimSpace(texto) == "" {
		return nil, ErrParse
	}

	data := &DASData{}
	encontrados := 0

	if cnpj, ok := extractField(texto, dasPadroes["cnpj"]); ok {
		data.CNPJ = extract.FormatarCNPJ(cnpj)
		encontrados++
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "CNPJ não encontrado")
	}

	if periodo, ok := extractField(texto, dasPadroes["periodo"]); ok {
		data.PeriodoApuracao = periodo
		if mes, ano, err := splitPeriodo(periodo); err == nil {
			data.Mes = mes
			data.Ano = ano
			encontrados++
		}
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Período de apuração não encontrado")
	}

	if valor, ok := extractField(texto, dasPadroes["valor_total"]); ok {
		data.ValorTotal = parseValor(valor)
		encontrados++
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Valor total não encontrado")
	}

	if vencimento, ok := extractField(texto, dasPadroes["vencimento"]); ok {
		if t := parseVencimento(vencimento); t != nil {
			data.DataVencimento = t
			encontrados++
		}
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Data de vencimento não encontrada")
	}

	if linha, ok := extractField(texto, dasPadroes["linha_digitavel"]); ok {
		data.LinhaDigitavel = removerEspacos(linha)
		encontrados++
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Linha digitável não encontrada")
	}

	if anexo, ok := extractField(texto, dasPadroes["anexo"]); ok {
		data.AnexoSimples = strings.ToUpper(anexo)
	}

	data.ExtractionConfidence = float64(encontrados) / dasCamposEsperados * 100
	return data, nil
}
