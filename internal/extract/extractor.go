package extract

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

// camposImportantes drive the field-coverage share of the confidence
// score and the erros list.
var camposImportantes = []string{"cnpj", "valor", "data"}

// Processar classifies the text and extracts every field it can find.
// When tipoEsperado is set the classification step is skipped and the
// expected type is taken at full score; extraction still runs normally.
func Processar(texto string, tipoEsperado models.TipoDocumento) *models.ResultadoExtracao {
	resultado := &models.ResultadoExtracao{
		Tipo:         models.TipoDesconhecido,
		Validacoes:   map[string]bool{"cnpj_valido": false, "valor_positivo": false, "data_valida": false},
		ProcessadoEm: time.Now().UTC(),
	}

	if strings.TrimSpace(texto) == "" {
		for _, campo := range camposImportantes {
			resultado.Erros = append(resultado.Erros, campo+" não encontrado")
		}
		return resultado
	}

	if tipoEsperado != "" && tipoEsperado != models.TipoDesconhecido {
		resultado.Tipo = tipoEsperado
		resultado.ScoreClassificacao = scoreMaximo
	} else {
		resultado.Tipo, resultado.ScoreClassificacao = Classificar(texto)
	}
	resultado.Dados.TipoDocumento = RotuloTipo(resultado.Tipo)

	extrairCampos(texto, resultado)
	validar(resultado)
	resultado.ScoreConfianca = calcularConfianca(resultado)

	return resultado
}

func extrairCampos(texto string, resultado *models.ResultadoExtracao) {
	encontrados := map[string]string{}

	for _, nome := range camposExtracao {
		padrao := padroesExtracao[nome]
		m := padrao.FindStringSubmatch(texto)
		if m == nil {
			continue
		}
		bruto := m[1]
		normalizado := normalizarCampo(nome, bruto, resultado)
		encontrados[nome] = normalizado
		resultado.Campos = append(resultado.Campos, models.ExtractedField{
			Name:            nome,
			RawMatch:        bruto,
			NormalizedValue: normalizado,
			PatternMatched:  padrao.String(),
		})
	}

	switch resultado.Tipo {
	case models.TipoNFE:
		if m := padraoNumeroNF.FindStringSubmatch(texto); m != nil {
			resultado.Dados.NumeroNF = m[1]
			resultado.Campos = append(resultado.Campos, models.ExtractedField{
				Name: "numero_nf", RawMatch: m[1], NormalizedValue: m[1], PatternMatched: padraoNumeroNF.String(),
			})
		}
	case models.TipoDAS:
		if m := padraoPeriodoApuracao.FindStringSubmatch(texto); m != nil {
			resultado.Dados.PeriodoApuracao = m[1]
			resultado.Campos = append(resultado.Campos, models.ExtractedField{
				Name: "periodo_apuracao", RawMatch: m[1], NormalizedValue: m[1], PatternMatched: padraoPeriodoApuracao.String(),
			})
		}
	}

	for _, campo := range camposImportantes {
		if _, ok := encontrados[campo]; !ok {
			resultado.Erros = append(resultado.Erros, campo+" não encontrado")
		}
	}
}

// normalizarCampo fills the dados struct and returns the normalized
// string representation stored in campos.
func normalizarCampo(nome, bruto string, resultado *models.ResultadoExtracao) string {
	switch nome {
	case "cnpj":
		digitos := SomenteDigitos(bruto)
		resultado.Dados.CNPJ = digitos
		resultado.Dados.CNPJFormatado = FormatarCNPJ(digitos)
		return digitos
	case "cpf":
		resultado.Dados.CPF = SomenteDigitos(bruto)
		return resultado.Dados.CPF
	case "valor":
		resultado.Dados.Valor = bruto
		if v, err := NormalizarValor(bruto); err == nil {
			resultado.Dados.ValorFloat = &v
			return v.String()
		}
		return bruto
	case "data":
		resultado.Dados.Data = bruto
		return bruto
	case "chave_nfe":
		resultado.Dados.ChaveNFE = bruto
	case "codigo_barras":
		resultado.Dados.CodigoBarras = bruto
	case "ncm":
		resultado.Dados.NCM = bruto
	case "cfop":
		resultado.Dados.CFOP = bruto
	}
	return bruto
}

// NormalizarValor converts a Brazilian-formatted amount (1.234,56) to a
// decimal value.
func NormalizarValor(valor string) (decimal.Decimal, error) {
	s := strings.TrimSpace(valor)
	if s == "" {
		return decimal.Zero, fmt.Errorf("valor vazio")
	}
	// Thousands separators first, then the decimal comma.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if n := strings.Count(s, "."); n > 1 {
		// 1.234.567 style without cents
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor inválido %q: %w", valor, err)
	}
	return d, nil
}

func validar(resultado *models.ResultadoExtracao) {
	if resultado.Dados.CNPJ != "" {
		resultado.Validacoes["cnpj_valido"] = ValidarCNPJ(resultado.Dados.CNPJ)
	}
	if resultado.Dados.ValorFloat != nil {
		resultado.Validacoes["valor_positivo"] = resultado.Dados.ValorFloat.IsPositive()
	}
	if resultado.Dados.Data != "" {
		resultado.Validacoes["data_valida"] = DataValida(resultado.Dados.Data)
	}
}

// DataValida accepts only real calendar dates in DD/MM/YYYY.
func DataValida(data string) bool {
	_, err := time.Parse("02/01/2006", data)
	return err == nil
}

// calcularConfianca weighs classification strength, field coverage and
// validation outcomes at 40/30/30.
func calcularConfianca(resultado *models.ResultadoExtracao) float64 {
	encontrados := 0
	for _, campo := range resultado.Campos {
		for _, importante := range camposImportantes {
			if campo.Name == importante {
				encontrados++
			}
		}
	}

	aprovadas := 0
	for _, ok := range resultado.Validacoes {
		if ok {
			aprovadas++
		}
	}

	score := 0.4*resultado.ScoreClassificacao +
		0.3*(float64(encontrados)/float64(len(camposImportantes)))*100 +
		0.3*(float64(aprovadas)/float64(len(resultado.Validacoes)))*100

	score = math.Round(score*100) / 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
