// Package sped parses pipe-delimited SPED ledgers (Fiscal and
// Contribuições) into a validation summary and audits the summary
// against a fixed rule table.
package sped

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/extract"
)

// ErrParse marks a ledger that cannot be audited at all: empty input or
// a file that does not open with the 0000 header record.
var ErrParse = errors.New("arquivo SPED inválido")

// ResumoSped is the validation summary the audit rules read. Counters
// default to zero so rule evaluation never fails on a partial file.
type ResumoSped struct {
	CNPJ    string `json:"cnpj"`
	Periodo string `json:"periodo"`

	TotalNotasEntrada int `json:"total_notas_entrada"`
	TotalNotasSaida   int `json:"total_notas_saida"`

	TemBlocoH bool `json:"tem_bloco_h"`

	NCMsInvalidos          int `json:"ncms_invalidos"`
	CFOPsInconsistentes    int `json:"cfops_inconsistentes"`
	DivergenciasAliquota   int `json:"divergencias_aliquota"`
	BasesZeradasComImposto int `json:"bases_zeradas_com_imposto"`
	CreditosSuspeitos      int `json:"creditos_suspeitos"`
	CSTsInconsistentes     int `json:"csts_inconsistentes"`
	ReceitasNaoTributadas  int `json:"receitas_nao_tributadas"`

	ValorTotalICMS decimal.Decimal `json:"valor_total_icms"`
}

// Alíquotas modais de ICMS aceitas sem apontamento.
var aliquotasICMSConhecidas = []decimal.Decimal{
	decimal.NewFromInt(0), decimal.NewFromInt(4), decimal.NewFromInt(7),
	decimal.NewFromInt(12), decimal.NewFromInt(17), decimal.NewFromInt(18),
	decimal.NewFromInt(25),
}

func aliquotaConhecida(aliq decimal.Decimal) bool {
	for _, a := range aliquotasICMSConhecidas {
		if a.Equal(aliq) {
			return true
		}
	}
	return false
}

// CSTs de PIS/COFINS previstos na tabela 4.3.3 da EFD.
var cstsPisCofinsValidos = buildCSTValidos()

func buildCSTValidos() map[string]bool {
	valido := map[string]bool{"98": true, "99": true}
	add := func(inicio, fim int) {
		for c := inicio; c <= fim; c++ {
			valido[fmt.Sprintf("%02d", c)] = true
		}
	}
	add(1, 9)
	valido["49"] = true
	add(50, 56)
	add(60, 66)
	add(70, 75)
	return valido
}

// Parse reads a SPED ledger. The accepted layout is the condensed export
// used by the audit flow:
//
//	|0000|...|CNPJ|...|DTINI|...|       header, mandatory first record
//	|C100|IND_OPER|...|                 0 = entrada, 1 = saída
//	|C170|NUM|NCM|CFOP|CST_ICMS|ALIQ|BC_ICMS|VL_ICMS|CST_PIS|BC_PIS|VL_PIS|
//	|H005|...| / |H010|...|             bloco de inventário
//	|M100|COD|BC|CREDITO| (M105/M500 idem)
//
// Unknown record types are skipped.
func Parse(r io.Reader) (*ResumoSped, error) {
	resumo := &ResumoSped{ValorTotalICMS: decimal.Zero}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	primeira := true
	for scanner.Scan() {
		linha := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(linha) == "" {
			continue
		}
		if !strings.HasPrefix(linha, "|") || !strings.HasSuffix(linha, "|") {
			if primeira {
				return nil, fmt.Errorf("%w: linha fora do formato de registro", ErrParse)
			}
			continue
		}

		campos := strings.Split(linha, "|")
		if len(campos) < 3 {
			continue
		}
		registro := campos[1]

		if primeira {
			if registro != "0000" {
				return nil, fmt.Errorf("%w: registro de abertura 0000 ausente", ErrParse)
			}
			lerAbertura(campos, resumo)
			primeira = false
			continue
		}

		switch registro {
		case "C100":
			switch campos[2] {
			case "0":
				resumo.TotalNotasEntrada++
			case "1":
				resumo.TotalNotasSaida++
			}
		case "C170":
			lerItem(campos, resumo)
		case "H005", "H010":
			resumo.TemBlocoH = true
		case "M100", "M105", "M500":
			lerCredito(campos, resumo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if primeira {
		return nil, fmt.Errorf("%w: arquivo vazio", ErrParse)
	}

	return resumo, nil
}

// ParseTexto is a convenience wrapper over Parse.
func ParseTexto(texto string) (*ResumoSped, error) {
	return Parse(strings.NewReader(texto))
}

func lerAbertura(campos []string, resumo *ResumoSped) {
	for _, c := range campos[2:] {
		if resumo.CNPJ == "" && len(c) == 14 && soDigitos(c) {
			resumo.CNPJ = extract.FormatarCNPJ(c)
		}
		if resumo.Periodo == "" && len(c) == 8 && soDigitos(c) {
			// DT_INI em ddmmaaaa
			resumo.Periodo = c[2:4] + "/" + c[4:8]
		}
	}
}

func lerItem(campos []string, resumo *ResumoSped) {
	campo := func(i int) string {
		if i < len(campos) {
			return strings.TrimSpace(campos[i])
		}
		return ""
	}

	if ncm := campo(3); ncm != "" && (len(ncm) != 8 || !soDigitos(ncm)) {
		resumo.NCMsInvalidos++
	}

	if cfop := campo(4); cfop != "" {
		if len(cfop) != 4 || !soDigitos(cfop) || !strings.ContainsRune("123567", rune(cfop[0])) {
			resumo.CFOPsInconsistentes++
		}
	}

	if aliq := campo(6); aliq != "" {
		if !aliquotaConhecida(valorSped(aliq)) {
			resumo.DivergenciasAliquota++
		}
	}

	bc := valorSped(campo(7))
	vl := valorSped(campo(8))
	if bc.IsZero() && vl.IsPositive() {
		resumo.BasesZeradasComImposto++
	}
	resumo.ValorTotalICMS = resumo.ValorTotalICMS.Add(vl)

	if cst := campo(9); cst != "" {
		if !cstsPisCofinsValidos[cst] {
			resumo.CSTsInconsistentes++
		}
		if cst == "08" || cst == "09" {
			resumo.ReceitasNaoTributadas++
		}
	}
}

func lerCredito(campos []string, resumo *ResumoSped) {
	if len(campos) < 5 {
		return
	}
	bc := valorSped(strings.TrimSpace(campos[3]))
	credito := valorSped(strings.TrimSpace(campos[4]))
	if bc.IsZero() && credito.IsPositive() {
		resumo.CreditosSuspeitos++
	}
}

// valorSped reads a SPED numeric field (comma decimal separator).
func valorSped(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func soDigitos(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
