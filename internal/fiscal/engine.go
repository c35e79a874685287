package fiscal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Result statuses. Business outcomes are reported here, not as Go
// errors; only malformed input (unknown annex) errors out.
const (
	StatusSucesso  = "SUCESSO"
	StatusExcedido = "EXCEDIDO"
	StatusErro     = "ERRO"
)

var cem = decimal.NewFromInt(100)

// ResultadoSimples is the outcome of one DAS computation.
type ResultadoSimples struct {
	Status   string `json:"status"`
	Mensagem string `json:"mensagem,omitempty"`
	Anexo    Anexo  `json:"anexo,omitempty"`
	Faixa    *Faixa `json:"faixa,omitempty"`

	ReceitaBruta12M decimal.Decimal `json:"receita_bruta_12m"`
	ReceitaMensal   decimal.Decimal `json:"receita_mensal"`

	// AliquotaEfetiva is a ratio (0.0997), not a percentage.
	AliquotaEfetiva decimal.Decimal `json:"aliquota_efetiva"`
	ValorDAS        decimal.Decimal `json:"valor_das"`

	ExcedeSublimiteEstadual bool `json:"excede_sublimite_estadual"`
	ExcedeLimiteNacional    bool `json:"excede_limite_nacional"`

	FatorR      *decimal.Decimal `json:"fator_r,omitempty"`
	CalculadoEm time.Time        `json:"calculado_em"`
}

// CalcularSimplesNacional resolves the bracket for the accumulated
// 12-month revenue and prices the month's DAS.
//
// When fatorR is given and the caller asked for annex III or V, the
// ratio decides the annex: >= 0.28 forces III, below forces V.
func CalcularSimplesNacional(receitaBruta12M, receitaMensal decimal.Decimal, anexo Anexo, fatorR *decimal.Decimal) (*ResultadoSimples, error) {
	agora := time.Now().UTC()

	if receitaBruta12M.GreaterThan(LimiteSimples) {
		return &ResultadoSimples{
			Status:                  StatusExcedido,
			Mensagem:                fmt.Sprintf("Receita excede o limite do Simples Nacional (R$ %s)", LimiteSimples.StringFixed(2)),
			ReceitaBruta12M:         receitaBruta12M,
			ReceitaMensal:           receitaMensal,
			AliquotaEfetiva:         decimal.Zero,
			ValorDAS:                decimal.Zero,
			ExcedeSublimiteEstadual: true,
			ExcedeLimiteNacional:    true,
			FatorR:                  fatorR,
			CalculadoEm:             agora,
		}, nil
	}

	if fatorR != nil && (anexo == AnexoIII || anexo == AnexoV) {
		if fatorR.GreaterThanOrEqual(FatorRCorte) {
			anexo = AnexoIII
		} else {
			anexo = AnexoV
		}
	}

	faixas, ok := TabelaSimples[anexo]
	if !ok {
		return nil, fmt.Errorf("anexo inválido: %s", anexo)
	}

	var aplicada *Faixa
	for i := range faixas {
		if receitaBruta12M.LessThanOrEqual(faixas[i].Limite) {
			aplicada = &faixas[i]
			break
		}
	}
	if aplicada == nil {
		aplicada = &faixas[len(faixas)-1]
	}

	// Alíquota efetiva = [(RBT12 x Aliq) - PD] / RBT12, nunca abaixo de 4%.
	aliquotaEfetiva := decimal.Zero
	if receitaBruta12M.IsPositive() {
		fracao := aplicada.AliquotaNominal.Div(cem)
		aliquotaEfetiva = receitaBruta12M.Mul(fracao).Sub(aplicada.ParcelaDeduzir).Div(receitaBruta12M)
	}
	if aliquotaEfetiva.LessThan(AliquotaMinima) {
		aliquotaEfetiva = AliquotaMinima
	}

	valorDAS := receitaMensal.Mul(aliquotaEfetiva).Round(2)

	return &ResultadoSimples{
		Status:                  StatusSucesso,
		Anexo:                   anexo,
		Faixa:                   aplicada,
		ReceitaBruta12M:         receitaBruta12M,
		ReceitaMensal:           receitaMensal,
		AliquotaEfetiva:         aliquotaEfetiva,
		ValorDAS:                valorDAS,
		ExcedeSublimiteEstadual: receitaBruta12M.GreaterThan(SublimiteEstadual),
		ExcedeLimiteNacional:    false,
		FatorR:                  fatorR,
		CalculadoEm:             agora,
	}, nil
}

// ResultadoFatorR is the payroll-over-revenue ratio and its framing.
type ResultadoFatorR struct {
	Status   string `json:"status"`
	Mensagem string `json:"mensagem,omitempty"`

	FolhaSalarios12M decimal.Decimal `json:"folha_salarios_12m"`
	ReceitaBruta12M  decimal.Decimal `json:"receita_bruta_12m"`

	FatorR           decimal.Decimal `json:"fator_r"`
	FatorRPercentual decimal.Decimal `json:"fator_r_percentual"`

	Enquadramento     string `json:"enquadramento,omitempty"`
	Descricao         string `json:"descricao,omitempty"`
	BeneficiaAnexoIII bool   `json:"beneficia_anexo_iii"`

	CalculadoEm time.Time `json:"calculado_em"`
}

// CalcularFatorR computes folha/receita rounded half-up to four places.
// Non-positive revenue is a business error carried in the result status.
func CalcularFatorR(folhaSalarios12M, receitaBruta12M decimal.Decimal) *ResultadoFatorR {
	agora := time.Now().UTC()

	if !receitaBruta12M.IsPositive() {
		return &ResultadoFatorR{
			Status:           StatusErro,
			Mensagem:         "Receita Bruta deve ser maior que zero",
			FolhaSalarios12M: folhaSalarios12M,
			ReceitaBruta12M:  receitaBruta12M,
			CalculadoEm:      agora,
		}
	}

	fatorR := folhaSalarios12M.Div(receitaBruta12M).Round(4)

	resultado := &ResultadoFatorR{
		Status:           StatusSucesso,
		FolhaSalarios12M: folhaSalarios12M,
		ReceitaBruta12M:  receitaBruta12M,
		FatorR:           fatorR,
		FatorRPercentual: fatorR.Mul(cem),
		CalculadoEm:      agora,
	}

	if fatorR.GreaterThanOrEqual(FatorRCorte) {
		resultado.Enquadramento = "ANEXO_III"
		resultado.Descricao = "Fator R >= 28%: Enquadramento no Anexo III (alíquotas reduzidas)"
		resultado.BeneficiaAnexoIII = true
	} else {
		resultado.Enquadramento = "ANEXO_V"
		resultado.Descricao = "Fator R < 28%: Enquadramento no Anexo V (alíquotas majoradas)"
	}

	return resultado
}

// CenarioAtual describes the company as it stands today.
type CenarioAtual struct {
	FatorR    decimal.Decimal `json:"fator_r"` // percentage
	Anexo     string          `json:"anexo"`
	DASMensal decimal.Decimal `json:"das_mensal"`
	Folha12M  decimal.Decimal `json:"folha_12m"`
}

// CenarioOtimizado describes the company at the 28% payroll threshold.
type CenarioOtimizado struct {
	FatorRMinimo           decimal.Decimal `json:"fator_r_minimo"` // percentage
	Anexo                  string          `json:"anexo"`
	DASMensal              decimal.Decimal `json:"das_mensal"`
	FolhaNecessaria12M     decimal.Decimal `json:"folha_necessaria_12m"`
	AumentoFolhaNecessario decimal.Decimal `json:"aumento_folha_necessario"`
}

// EconomiaPotencial is the monthly and yearly DAS delta between annexes.
type EconomiaPotencial struct {
	Mensal decimal.Decimal `json:"mensal"`
	Anual  decimal.Decimal `json:"anual"`
}

// SimulacaoFatorR compares the annex V and annex III scenarios.
type SimulacaoFatorR struct {
	Status            string            `json:"status"`
	Mensagem          string            `json:"mensagem,omitempty"`
	CenarioAtual      *CenarioAtual     `json:"cenario_atual,omitempty"`
	CenarioOtimizado  *CenarioOtimizado `json:"cenario_otimizado,omitempty"`
	EconomiaPotencial *EconomiaPotencial `json:"economia_potencial,omitempty"`
	Recomendacao      string            `json:"recomendacao,omitempty"`
}

// SimularEconomiaFatorR estimates how much DAS the company saves per
// month and per year by raising payroll to the Fator R threshold.
func SimularEconomiaFatorR(receitaBruta12M, receitaMensal, folhaAtual12M decimal.Decimal) (*SimulacaoFatorR, error) {
	calculoV, err := CalcularSimplesNacional(receitaBruta12M, receitaMensal, AnexoV, nil)
	if err != nil {
		return nil, err
	}
	calculoIII, err := CalcularSimplesNacional(receitaBruta12M, receitaMensal, AnexoIII, nil)
	if err != nil {
		return nil, err
	}

	if calculoV.Status == StatusExcedido {
		return &SimulacaoFatorR{Status: StatusExcedido, Mensagem: calculoV.Mensagem}, nil
	}

	fatorAtual := CalcularFatorR(folhaAtual12M, receitaBruta12M)
	if fatorAtual.Status != StatusSucesso {
		return &SimulacaoFatorR{Status: StatusErro, Mensagem: fatorAtual.Mensagem}, nil
	}

	folhaNecessaria := receitaBruta12M.Mul(FatorRCorte)
	aumentoFolha := folhaNecessaria.Sub(folhaAtual12M)
	if aumentoFolha.IsNegative() {
		aumentoFolha = decimal.Zero
	}

	economiaMensal := calculoV.ValorDAS.Sub(calculoIII.ValorDAS)

	atual := &CenarioAtual{
		FatorR:   fatorAtual.FatorRPercentual,
		Folha12M: folhaAtual12M,
	}
	if fatorAtual.BeneficiaAnexoIII {
		atual.Anexo = "III"
		atual.DASMensal = calculoIII.ValorDAS
	} else {
		atual.Anexo = "V"
		atual.DASMensal = calculoV.ValorDAS
	}

	recomendacao := "Já enquadrado no Anexo III"
	if aumentoFolha.IsPositive() {
		recomendacao = "Aumentar folha de salários"
	}

	return &SimulacaoFatorR{
		Status:       StatusSucesso,
		CenarioAtual: atual,
		CenarioOtimizado: &CenarioOtimizado{
			FatorRMinimo:           FatorRCorte.Mul(cem),
			Anexo:                  "III",
			DASMensal:              calculoIII.ValorDAS,
			FolhaNecessaria12M:     folhaNecessaria,
			AumentoFolhaNecessario: aumentoFolha,
		},
		EconomiaPotencial: &EconomiaPotencial{
			Mensal: economiaMensal,
			Anual:  economiaMensal.Mul(decimal.NewFromInt(12)),
		},
		Recomendacao: recomendacao,
	}, nil
}
