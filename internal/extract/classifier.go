package extract

import (
	"strings"

	"github.com/contaflow/fiscal-doc-service/internal/models"
)

const (
	pontosPorPadrao = 25.0
	scoreMaximo     = 100.0
)

// Classificar scores the text against every known document type and
// returns the best match. Each matching pattern adds 25 points, capped at
// 100. On a tie the type registered first in the table wins. Text that
// matches nothing classifies as desconhecido with score 0.
func Classificar(texto string) (models.TipoDocumento, float64) {
	lower := strings.ToLower(texto)

	melhorTipo := models.TipoDesconhecido
	melhorScore := 0.0

	for _, tp := range padroesClassificacao {
		score := 0.0
		for _, p := range tp.Padroes {
			if p.MatchString(lower) {
				score += pontosPorPadrao
			}
		}
		if score > scoreMaximo {
			score = scoreMaximo
		}
		if score > melhorScore {
			melhorScore = score
			melhorTipo = tp.Tipo
		}
	}

	return melhorTipo, melhorScore
}

// RotuloTipo returns the human label for a document type, or "" when the
// type carries none.
func RotuloTipo(tipo models.TipoDocumento) string {
	for _, tp := range padroesClassificacao {
		if tp.Tipo == tipo {
			return tp.Rotulo
		}
	}
	return ""
}
