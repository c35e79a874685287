package parsers

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/extract"
)

// DCTFWebData holds the fields extracted from a DCTFWeb receipt or
// declaration.
type DCTFWebData struct {
	CNPJ            string `json:"cnpj"`
	RazaoSocial     string `json:"razao_social,omitempty"`
	PeriodoApuracao string `json:"periodo_apuracao"`
	Ano             int    `json:"ano,omitempty"`
	Mes             int    `json:"mes,omitempty"`

	ValorTotal     decimal.Decimal `json:"valor_total"`
	DataVencimento *time.Time      `json:"data_vencimento,omitempty"`

	NumeroRecibo   string `json:"numero_recibo,omitempty"`
	Situacao       string `json:"situacao,omitempty"`
	TipoDeclaracao string `json:"tipo_declaracao"`

	ExtractionConfidence float64  `json:"extraction_confidence"`
	ExtractionErrors     []string `json:"extraction_errors,omitempty"`
}

// Six fields drive the confidence score; situação and tipo are bonus
// metadata and do not count.
const dctfwebCamposEsperados = 6

var dctfwebPadroes = map[string][]*regexp.Regexp{
	"cnpj": {
		regexp.MustCompile(`(?i)CNPJ[:\s]+([0-9]{2}[.][0-9]{3}[.][0-9]{3}[/][0-9]{4}[-][0-9]{2})`),
		regexp.MustCompile(`(?i)([0-9]{2}[.][0-9]{3}[.][0-9]{3}[/][0-9]{4}[-][0-9]{2})`),
		regexp.MustCompile(`(?i)([0-9]{14})`),
	},
	"periodo": {
		regexp.MustCompile(`(?i)Per[íi]odo\s*(?:de\s*)?Apura[çc][ãa]o[:\s]*([0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)Compet[êe]ncia[:\s]*([0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)([0-9]{2}[/][0-9]{4})`),
	},
	"valor_total": {
		regexp.MustCompile(`(?i)Valor\s*Total[:\s]*R?\$?\s*([0-9.,]+)`),
		regexp.MustCompile(`(?i)Total\s*(?:a\s*)?(?:Recolher|Pagar)[:\s]*R?\$?\s*([0-9.,]+)`),
		regexp.MustCompile(`(?i)TOTAL[:\s]*R?\$?\s*([0-9.,]+)`),
	},
	"vencimento": {
		regexp.MustCompile(`(?i)Vencimento[:\s]*([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)Data\s*(?:de\s*)?Vencimento[:\s]*([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
		regexp.MustCompile(`(?i)Vence\s*em[:\s]*([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
	},
	"recibo": {
		regexp.MustCompile(`(?i)N[úu]mero\s*(?:do\s*)?Recibo[:\s]*([A-Z0-9.-]+)`),
		regexp.MustCompile(`(?i)Recibo[:\s]*([A-Z0-9.-]+)`),
		regexp.MustCompile(`(?i)Protocolo[:\s]*([A-Z0-9.-]+)`),
	},
	"razao_social": {
		regexp.MustCompile(`(?i)Raz[ãa]o\s*Social[:\s]*([^` + "\n" + `]+)`),
		regexp.MustCompile(`(?i)Nome\s*Empresarial[:\s]*([^` + "\n" + `]+)`),
		regexp.MustCompile(`(?i)Contribuinte[:\s]*([^` + "\n" + `]+)`),
	},
	"situacao": {
		regexp.MustCompile(`(?i)Situa[çc][ãa]o[:\s]*(Transmitida|Em Processamento|Aceita|Rejeitada|Retificadora)`),
		regexp.MustCompile(`(?i)Status[:\s]*(Transmitida|Em Processamento|Aceita|Rejeitada|Retificadora)`),
	},
}

// ParseDCTFWebBytes extracts DCTFWeb data from PDF bytes.
func ParseDCTFWebBytes(conteudo []byte) (*DCTFWebData, error) {
	texto, err := textoDePDF(conteudo)
	if err != nil {
		return nil, err
	}
	return ParseDCTFWebTexto(texto)
}

// ParseDCTFWebTexto extracts DCTFWeb data from already-acquired text.
func ParseDCTFWebTexto(texto string) (*DCTFWebData, error) {
	if strings.TrimSpace(texto) == "" {
		return nil, ErrParse
	}

	data := &DCTFWebData{TipoDeclaracao: identificarTipoDCTFWeb(texto)}
	encontrados := 0

	if cnpj, ok := extractField(texto, dctfwebPadroes["cnpj"]); ok {
		data.CNPJ = extract.FormatarCNPJ(cnpj)
		encontrados++
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "CNPJ não encontrado")
	}

	if periodo, ok := extractField(texto, dctfwebPadroes["periodo"]); ok {
		data.PeriodoApuracao = periodo
		if mes, ano, err := splitPeriodo(periodo); err == nil {
			data.Mes = mes
			data.Ano = ano
			encontrados++
		} else {
			data.ExtractionErrors = append(data.ExtractionErrors, "Período em formato inválido")
		}
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Período de apuração não encontrado")
	}

	if valor, ok := extractField(texto, dctfwebPadroes["valor_total"]); ok {
		data.ValorTotal = parseValor(valor)
		encontrados++
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Valor total não encontrado")
	}

	if vencimento, ok := extractField(texto, dctfwebPadroes["vencimento"]); ok {
		if t := parseVencimento(vencimento); t != nil {
			data.DataVencimento = t
			encontrados++
		} else {
			data.ExtractionErrors = append(data.ExtractionErrors, "Data de vencimento em formato inválido")
		}
	} else {
		data.ExtractionErrors = append(data.ExtractionErrors, "Data de vencimento não encontrada")
	}

	if recibo, ok := extractField(texto, dctfwebPadroes["recibo"]); ok {
		data.NumeroRecibo = strings.TrimSpace(recibo)
		encontrados++
	}

	if razao, ok := extractField(texto, dctfwebPadroes["razao_social"]); ok {
		razao = strings.TrimSpace(razao)
		if len(razao) > 200 {
			razao = razao[:200]
		}
		data.RazaoSocial = razao
		encontrados++
	}

	if situacao, ok := extractField(texto, dctfwebPadroes["situacao"]); ok {
		data.Situacao = situacao
	}

	data.ExtractionConfidence = float64(encontrados) / dctfwebCamposEsperados * 100
	return data, nil
}

func identificarTipoDCTFWeb(texto string) string {
	lower := strings.ToLower(texto)
	switch {
	case strings.Contains(lower, "anual"):
		return "DCTFWeb Anual"
	case strings.Contains(lower, "13") || strings.Contains(lower, "décimo terceiro"):
		return "DCTFWeb 13º"
	case strings.Contains(lower, "retificadora"):
		return "DCTFWeb Retificadora"
	default:
		return "DCTFWeb Mensal"
	}
}
