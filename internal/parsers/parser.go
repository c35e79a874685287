// Package parsers extracts structured data from DCTFWeb and DAS
// documents. Each parser tries an ordered list of patterns per field and
// reports a flat confidence of found fields over expected fields.
package parsers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/extract"
	"github.com/contaflow/fiscal-doc-service/internal/textextract"
)

// ErrParse marks input that could not be read at all (unreadable PDF,
// empty text). Field-level misses are reported inside the result, not as
// errors.
var ErrParse = errors.New("falha ao interpretar o documento")

// extractField tries each pattern in order and returns the first capture.
func extractField(texto string, padroes []*regexp.Regexp) (string, bool) {
	for _, p := range padroes {
		if m := p.FindStringSubmatch(texto); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// parseValor is lenient: a matched amount that fails numeric conversion
// comes back as zero, the field still counts as found.
func parseValor(valor string) decimal.Decimal {
	v, err := extract.NormalizarValor(strings.TrimSpace(strings.TrimPrefix(valor, "R$")))
	if err != nil {
		return decimal.Zero
	}
	return v
}

func parseVencimento(s string) *time.Time {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return nil
	}
	return &t
}

// splitPeriodo breaks "MM/YYYY" into month and year.
func splitPeriodo(periodo string) (mes, ano int, err error) {
	partes := strings.Split(periodo, "/")
	if len(partes) != 2 {
		return 0, 0, fmt.Errorf("período em formato inválido: %q", periodo)
	}
	mes, err = strconv.Atoi(partes[0])
	if err != nil {
		return 0, 0, err
	}
	ano, err = strconv.Atoi(partes[1])
	return mes, ano, err
}

// textoDePDF pulls the text layer out of PDF bytes.
func textoDePDF(conteudo []byte) (string, error) {
	texto, err := textextract.PDFTexto(conteudo)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	return texto, nil
}

func removerEspacos(s string) string {
	return strings.Join(strings.Fields(s), "")
}
