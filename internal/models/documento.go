package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoDocumento identifies the Brazilian fiscal document classes the
// pipeline recognizes.
type TipoDocumento string

const (
	TipoNFE          TipoDocumento = "nfe"       // Nota Fiscal Eletronica
	TipoNFSE         TipoDocumento = "nfse"      // Nota Fiscal de Servico
	TipoCTE          TipoDocumento = "cte"       // Conhecimento de Transporte
	TipoDARF         TipoDocumento = "darf"      // Documento de Arrecadacao de Receitas Federais
	TipoDAS          TipoDocumento = "das"       // Documento de Arrecadacao do Simples
	TipoGPS          TipoDocumento = "gps"       // Guia da Previdencia Social
	TipoDCTFWeb      TipoDocumento = "dctfweb"   // Declaracao de Debitos e Creditos Tributarios
	TipoCertidao     TipoDocumento = "certidao"  // Certidao negativa / regularidade
	TipoBoleto       TipoDocumento = "boleto"
	TipoExtrato      TipoDocumento = "extrato"
	TipoDesconhecido TipoDocumento = "desconhecido"
)

// StatusDocumento is the terminal processing state of an uploaded document.
type StatusDocumento string

const (
	StatusPendente StatusDocumento = "pendente"
	StatusProcessado StatusDocumento = "processado"
	StatusRevisao  StatusDocumento = "revisao_necessaria"
	StatusErro     StatusDocumento = "erro"
)

// ExtractedField records a single regex hit during field extraction.
type ExtractedField struct {
	Name            string `json:"name"`
	RawMatch        string `json:"raw_match"`
	NormalizedValue string `json:"normalized_value"`
	PatternMatched  string `json:"pattern_matched"`
}

// DadosExtraidos carries the normalized values pulled out of a document.
// Keys follow the names used by the downstream accounting integrations.
type DadosExtraidos struct {
	CNPJ            string           `json:"cnpj,omitempty"`
	CNPJFormatado   string           `json:"cnpj_formatado,omitempty"`
	CPF             string           `json:"cpf,omitempty"`
	Valor           string           `json:"valor,omitempty"`
	ValorFloat      *decimal.Decimal `json:"valor_float,omitempty"`
	Data            string           `json:"data,omitempty"`
	ChaveNFE        string           `json:"chave_nfe,omitempty"`
	CodigoBarras    string           `json:"codigo_barras,omitempty"`
	NCM             string           `json:"ncm,omitempty"`
	CFOP            string           `json:"cfop,omitempty"`
	NumeroNF        string           `json:"numero_nf,omitempty"`
	PeriodoApuracao string           `json:"periodo_apuracao,omitempty"`
	TipoDocumento   string           `json:"tipo_documento,omitempty"`
}

// ResultadoExtracao is the full outcome of classification plus field
// extraction over one document's text.
type ResultadoExtracao struct {
	Tipo               TipoDocumento    `json:"tipo"`
	ScoreClassificacao float64          `json:"score_classificacao"`
	ScoreConfianca     float64          `json:"score_confianca"`
	Campos             []ExtractedField `json:"campos"`
	Dados              DadosExtraidos   `json:"dados_extraidos"`
	Validacoes         map[string]bool  `json:"validacoes"`
	Erros              []string         `json:"erros,omitempty"`
	ProcessadoEm       time.Time        `json:"processado_em"`
}
