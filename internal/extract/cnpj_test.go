package extract

import "testing"

func TestValidarCNPJValido(t *testing.T) {
	casos := []string{
		"11.222.333/0001-81",
		"11222333000181",
	}
	for _, c := range casos {
		if !ValidarCNPJ(c) {
			t.Errorf("ValidarCNPJ(%q) = false, esperado true", c)
		}
	}
}

func TestValidarCNPJCorrupcaoDigitoUnico(t *testing.T) {
	valido := "11222333000181"
	for pos := 0; pos < len(valido); pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == valido[pos] {
				continue
			}
			corrompido := valido[:pos] + string(d) + valido[pos+1:]
			if ValidarCNPJ(corrompido) {
				t.Errorf("ValidarCNPJ(%q) = true após troca na posição %d", corrompido, pos)
			}
		}
	}
}

func TestValidarCNPJRejeitaDigitosRepetidos(t *testing.T) {
	if ValidarCNPJ("11111111111111") {
		t.Error("sequência repetida aceita")
	}
}

func TestValidarCNPJTamanhoErrado(t *testing.T) {
	casos := []string{"", "1122233300018", "112223330001811", "abc"}
	for _, c := range casos {
		if ValidarCNPJ(c) {
			t.Errorf("ValidarCNPJ(%q) = true, esperado false", c)
		}
	}
}

func TestFormatarCNPJ(t *testing.T) {
	got := FormatarCNPJ("11222333000181")
	if got != "11.222.333/0001-81" {
		t.Errorf("FormatarCNPJ = %q", got)
	}
	if FormatarCNPJ("123") != "123" {
		t.Error("entrada curta deveria voltar inalterada")
	}
}
