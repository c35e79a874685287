package sped

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TipoAuditoria selects which rule registry runs.
type TipoAuditoria string

const (
	AuditoriaSpedFiscal        TipoAuditoria = "SPED Fiscal"
	AuditoriaSpedContribuicoes TipoAuditoria = "SPED Contribuições"
)

// Severidade gradua um apontamento de auditoria.
type Severidade string

const (
	SeveridadeInformativo Severidade = "Informativo"
	SeveridadeAviso       Severidade = "Aviso"
	SeveridadeCritico     Severidade = "Crítico"
)

// NaoConformidade is one audit finding. Immutable once produced.
type NaoConformidade struct {
	Severidade          Severidade       `json:"severidade"`
	Regra               string           `json:"regra"`
	Descricao           string           `json:"descricao"`
	ReferenciaDocumento string           `json:"referencia_documento,omitempty"`
	ValorEnvolvido      *decimal.Decimal `json:"valor_envolvido,omitempty"`
	SugestaoCorrecao    string           `json:"sugestao_correcao,omitempty"`
}

// Regra is a single audit check over the parsed summary. Rules run
// independently: one firing never suppresses another.
type Regra struct {
	Codigo     string
	Descricao  string
	Severidade Severidade
	Validacao  string

	condicao func(*ResumoSped) (bool, string)
}

// Avaliar returns a finding when the rule's condition holds, nil
// otherwise.
func (r Regra) Avaliar(resumo *ResumoSped) *NaoConformidade {
	problema, detalhes := r.condicao(resumo)
	if !problema {
		return nil
	}
	return &NaoConformidade{
		Severidade:          r.Severidade,
		Regra:               r.Codigo,
		Descricao:           r.Descricao,
		ReferenciaDocumento: detalhes,
		SugestaoCorrecao:    "Revisar e corrigir: " + r.Validacao,
	}
}

// RegrasSpedFiscal audits EFD ICMS/IPI summaries.
var RegrasSpedFiscal = []Regra{
	{
		Codigo:     "SPED-F001",
		Descricao:  "Registro de inventário obrigatório (H010)",
		Severidade: SeveridadeCritico,
		Validacao:  "Verificar existência de bloco H",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.TemBlocoH {
				return false, ""
			}
			return true, "Bloco H (Inventário) não encontrado no arquivo"
		},
	},
	{
		Codigo:     "SPED-F002",
		Descricao:  "NCM inválido ou inexistente",
		Severidade: SeveridadeAviso,
		Validacao:  "Validar NCMs dos produtos",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.NCMsInvalidos == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d NCMs inválidos encontrados", r.NCMsInvalidos)
		},
	},
	{
		Codigo:     "SPED-F003",
		Descricao:  "Divergência de alíquota ICMS",
		Severidade: SeveridadeCritico,
		Validacao:  "Comparar alíquota declarada vs tabela estadual",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.DivergenciasAliquota == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d divergências de alíquota ICMS", r.DivergenciasAliquota)
		},
	},
	{
		Codigo:     "SPED-F004",
		Descricao:  "CFOP incompatível com operação",
		Severidade: SeveridadeAviso,
		Validacao:  "Verificar consistência CFOP x natureza operação",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.CFOPsInconsistentes == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d CFOPs inconsistentes", r.CFOPsInconsistentes)
		},
	},
	{
		Codigo:     "SPED-F005",
		Descricao:  "Base de cálculo zerada com imposto maior que zero",
		Severidade: SeveridadeCritico,
		Validacao:  "BC_ICMS = 0 AND VL_ICMS > 0",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.BasesZeradasComImposto == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d itens com base zerada e imposto destacado", r.BasesZeradasComImposto)
		},
	},
}

// RegrasSpedContribuicoes audits EFD Contribuições summaries.
var RegrasSpedContribuicoes = []Regra{
	{
		Codigo:     "SPED-C001",
		Descricao:  "CST de PIS/COFINS inconsistente",
		Severidade: SeveridadeAviso,
		Validacao:  "Verificar CST vs regime tributário",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.CSTsInconsistentes == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d itens com CST fora da tabela", r.CSTsInconsistentes)
		},
	},
	{
		Codigo:     "SPED-C002",
		Descricao:  "Crédito indevido de PIS/COFINS",
		Severidade: SeveridadeCritico,
		Validacao:  "Verificar elegibilidade do crédito",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.CreditosSuspeitos == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d créditos suspeitos identificados", r.CreditosSuspeitos)
		},
	},
	{
		Codigo:     "SPED-C003",
		Descricao:  "Receita não tributada sem justificativa",
		Severidade: SeveridadeAviso,
		Validacao:  "Verificar natureza da receita isenta",
		condicao: func(r *ResumoSped) (bool, string) {
			if r.ReceitasNaoTributadas == 0 {
				return false, ""
			}
			return true, fmt.Sprintf("%d itens de receita isenta ou sem incidência", r.ReceitasNaoTributadas)
		},
	},
}

// RegrasPara resolves the registry for an audit type. Free-form type
// strings mentioning "contribui" select the Contribuições set.
func RegrasPara(tipo TipoAuditoria) []Regra {
	if strings.Contains(strings.ToLower(string(tipo)), "contribui") {
		return RegrasSpedContribuicoes
	}
	return RegrasSpedFiscal
}

// Auditar runs every rule of the requested type over the summary.
func Auditar(tipo TipoAuditoria, resumo *ResumoSped) []NaoConformidade {
	var achados []NaoConformidade
	for _, regra := range RegrasPara(tipo) {
		if nc := regra.Avaliar(resumo); nc != nil {
			achados = append(achados, *nc)
		}
	}
	return achados
}
