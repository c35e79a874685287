package fiscal

import "github.com/shopspring/decimal"

// Anexo selects one of the five Simples Nacional rate tables.
type Anexo string

const (
	AnexoI   Anexo = "anexo_i"   // Comércio
	AnexoII  Anexo = "anexo_ii"  // Indústria
	AnexoIII Anexo = "anexo_iii" // Serviços (Fator R >= 28%)
	AnexoIV  Anexo = "anexo_iv"  // Serviços específicos
	AnexoV   Anexo = "anexo_v"   // Serviços (Fator R < 28%)
)

// Faixa is one progressive bracket: revenue ceiling, nominal rate as a
// percentage and the deductible parcel.
type Faixa struct {
	Limite          decimal.Decimal `json:"limite"`
	AliquotaNominal decimal.Decimal `json:"aliquota_nominal"`
	ParcelaDeduzir  decimal.Decimal `json:"parcela_deduzir"`
}

var (
	// LimiteSimples is the national revenue ceiling of the regime.
	LimiteSimples = decimal.NewFromInt(4_800_000)
	// SublimiteEstadual bounds ICMS/ISS collection inside the regime.
	SublimiteEstadual = decimal.NewFromInt(3_600_000)
	// AliquotaMinima floors the effective rate.
	AliquotaMinima = decimal.RequireFromString("0.04")
	// FatorRCorte decides between annexes III and V.
	FatorRCorte = decimal.RequireFromString("0.28")
)

// TabelaSimples carries the LC 123/2006 brackets per annex. Ceilings
// strictly increase and every annex ends at LimiteSimples.
var TabelaSimples = map[Anexo][]Faixa{
	AnexoI: {
		faixa(180_000, "4.0", "0"),
		faixa(360_000, "7.3", "5940"),
		faixa(720_000, "9.5", "13860"),
		faixa(1_800_000, "10.7", "22500"),
		faixa(3_600_000, "14.3", "87300"),
		faixa(4_800_000, "19.0", "378000"),
	},
	AnexoII: {
		faixa(180_000, "4.5", "0"),
		faixa(360_000, "7.8", "5940"),
		faixa(720_000, "10.0", "13860"),
		faixa(1_800_000, "11.2", "22500"),
		faixa(3_600_000, "14.7", "85500"),
		faixa(4_800_000, "30.0", "720000"),
	},
	AnexoIII: {
		faixa(180_000, "6.0", "0"),
		faixa(360_000, "11.2", "9360"),
		faixa(720_000, "13.5", "17640"),
		faixa(1_800_000, "16.0", "35640"),
		faixa(3_600_000, "21.0", "125640"),
		faixa(4_800_000, "33.0", "648000"),
	},
	AnexoIV: {
		faixa(180_000, "4.5", "0"),
		faixa(360_000, "9.0", "8100"),
		faixa(720_000, "10.2", "12420"),
		faixa(1_800_000, "14.0", "39780"),
		faixa(3_600_000, "22.0", "183780"),
		faixa(4_800_000, "33.0", "828000"),
	},
	AnexoV: {
		faixa(180_000, "15.5", "0"),
		faixa(360_000, "18.0", "4500"),
		faixa(720_000, "19.5", "9900"),
		faixa(1_800_000, "20.5", "17100"),
		faixa(3_600_000, "23.0", "62100"),
		faixa(4_800_000, "30.5", "540000"),
	},
}

func faixa(limite int64, aliquota, deducao string) Faixa {
	return Faixa{
		Limite:          decimal.NewFromInt(limite),
		AliquotaNominal: decimal.RequireFromString(aliquota),
		ParcelaDeduzir:  decimal.RequireFromString(deducao),
	}
}
