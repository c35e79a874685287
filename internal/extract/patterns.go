package extract

import (
	"regexp"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

// tipoPatterns binds a document type to its identifying expressions.
// Classification runs over lowercased text, so the expressions are
// written in lowercase.
type tipoPatterns struct {
	Tipo     models.TipoDocumento
	Padroes  []*regexp.Regexp
	Rotulo   string // human label recorded in dados_extraidos
}

// padroesClassificacao is ordered: on a score tie the earlier entry wins,
// which keeps classification deterministic across runs.
var padroesClassificacao = []tipoPatterns{
	{
		Tipo: models.TipoNFE,
		Padroes: compile(
			`nota\s*fiscal\s*eletr[oô]nica`,
			`nf-?e`,
			`chave\s*de\s*acesso.*[0-9]{44}`,
			`danfe`,
		),
		Rotulo: "Nota Fiscal Eletrônica",
	},
	{
		Tipo: models.TipoNFSE,
		Padroes: compile(
			`nota\s*fiscal\s*de\s*servi[çc]os?`,
			`nfs-?e`,
			`iss(?:qn)?`,
		),
		Rotulo: "Nota Fiscal de Serviços",
	},
	{
		Tipo: models.TipoCTE,
		Padroes: compile(
			`conhecimento\s*de\s*transporte`,
			`ct-?e`,
			`dacte`,
		),
		Rotulo: "Conhecimento de Transporte",
	},
	{
		Tipo: models.TipoDARF,
		Padroes: compile(
			`documento\s*de\s*arrecada[çc][ãa]o.*receita`,
			`darf`,
			`c[óo]digo\s*da\s*receita`,
		),
		Rotulo: "DARF",
	},
	{
		Tipo: models.TipoDAS,
		Padroes: compile(
			`documento\s*de\s*arrecada[çc][ãa]o.*simples|simples\s*nacional`,
			`\bdas\b`,
			`per[íi]odo\s*de\s*apura[çc][ãa]o`,
			`apura[çc][ãa]o[:\s]*[0-9]{2}/[0-9]{4}|compet[êe]ncia[:\s]*[0-9]{2}/[0-9]{4}`,
		),
		Rotulo: "DAS - Simples Nacional",
	},
	{
		Tipo: models.TipoGPS,
		Padroes: compile(
			`guia\s*da\s*previd[êe]ncia\s*social`,
			`\bgps\b`,
			`inss`,
		),
		Rotulo: "GPS",
	},
	{
		Tipo: models.TipoDCTFWeb,
		Padroes: compile(
			`dctf-?web`,
			`declara[çc][ãa]o\s*de\s*d[ée]bitos\s*e\s*cr[ée]ditos`,
			`darf\s*numerado`,
		),
		Rotulo: "DCTFWeb",
	},
	{
		Tipo: models.TipoCertidao,
		Padroes: compile(
			`certid[ãa]o\s*negativa`,
			`\bcnd\b`,
			`regularidade\s*fiscal`,
		),
		Rotulo: "Certidão",
	},
	{
		Tipo: models.TipoBoleto,
		Padroes: compile(
			`\bboleto\b`,
			`linha\s*digit[áa]vel`,
			`ficha\s*de\s*compensa[çc][ãa]o`,
		),
		Rotulo: "Boleto Bancário",
	},
	{
		Tipo: models.TipoExtrato,
		Padroes: compile(
			`\bextrato\b`,
			`saldo\s*(anterior|atual|final)`,
			`lan[çc]amentos?`,
		),
		Rotulo: "Extrato Bancário",
	},
}

// Generic field patterns. One expression per field; extraction keeps the
// first capture group. Matching is case-insensitive over the raw text.
var padroesExtracao = map[string]*regexp.Regexp{
	"cnpj":          regexp.MustCompile(`(?i)([0-9]{2}[.][0-9]{3}[.][0-9]{3}[/][0-9]{4}[-][0-9]{2})`),
	"cpf":           regexp.MustCompile(`(?i)([0-9]{3}[.][0-9]{3}[.][0-9]{3}[-][0-9]{2})`),
	"valor":         regexp.MustCompile(`(?i)(?:R\$|BRL)\s*([0-9]{1,3}(?:[.,][0-9]{3})*(?:[.,][0-9]{2}))`),
	"data":          regexp.MustCompile(`(?i)([0-9]{2}[/][0-9]{2}[/][0-9]{4})`),
	"chave_nfe":     regexp.MustCompile(`(?i)([0-9]{44})`),
	"codigo_barras": regexp.MustCompile(`(?i)([0-9]{47,48})`),
	"ncm":           regexp.MustCompile(`(?i)NCM[:\s]*([0-9]{8})`),
	"cfop":          regexp.MustCompile(`(?i)CFOP[:\s]*([0-9]{4})`),
}

// camposExtracao fixes the iteration order over padroesExtracao so the
// campos slice is stable between runs.
var camposExtracao = []string{
	"cnpj", "cpf", "valor", "data", "chave_nfe", "codigo_barras", "ncm", "cfop",
}

// Type-specific extras, applied after the generic pass.
var (
	padraoNumeroNF        = regexp.MustCompile(`(?i)n[f]?-?e?\s*n[º°]?\s*([0-9]+)`)
	padraoPeriodoApuracao = regexp.MustCompile(`(?i)per[íi]odo.*?([0-9]{2}/[0-9]{4})`)
)

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}
