package extract

import "strings"

var (
	pesosCNPJPrimeiro = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	pesosCNPJSegundo  = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidarCNPJ checks the two mod-11 verification digits of a CNPJ.
// Accepts formatted or digits-only input. Sequences of a single repeated
// digit are well-formed but always invalid.
func ValidarCNPJ(cnpj string) bool {
	digitos := SomenteDigitos(cnpj)
	if len(digitos) != 14 {
		return false
	}
	if strings.Count(digitos, string(digitos[0])) == 14 {
		return false
	}

	if digitoVerificador(digitos[:12], pesosCNPJPrimeiro) != int(digitos[12]-'0') {
		return false
	}
	return digitoVerificador(digitos[:13], pesosCNPJSegundo) == int(digitos[13]-'0')
}

func digitoVerificador(parcial string, pesos []int) int {
	soma := 0
	for i, peso := range pesos {
		soma += int(parcial[i]-'0') * peso
	}
	resto := soma % 11
	if resto < 2 {
		return 0
	}
	return 11 - resto
}

// FormatarCNPJ renders 14 digits as XX.XXX.XXX/XXXX-XX. Input that is not
// exactly 14 digits is returned unchanged.
func FormatarCNPJ(cnpj string) string {
	d := SomenteDigitos(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// SomenteDigitos strips everything but ASCII digits.
func SomenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
