package domain

// Contract describes the static metadata of a tradable instrument.
type Contract struct {
	Symbol     string
	Name       string
	PointValue float64 // currency per point per contract
	TickSize   float64
}

var contracts = map[string]Contract{
	"WIN": {Symbol: "WIN", Name: "Mini Índice", PointValue: 0.20, TickSize: 5.0},
	"WDO": {Symbol: "WDO", Name: "Mini Dólar", PointValue: 10.0, TickSize: 0.5},
	"IND": {Symbol: "IND", Name: "Índice Cheio", PointValue: 1.0, TickSize: 5.0},
	"DOL": {Symbol: "DOL", Name: "Dólar Cheio", PointValue: 50.0, TickSize: 0.5},
}

// DefaultContract is used when a symbol is unknown.
const DefaultContract = "WIN"

// LookupContract returns the contract spec for a symbol. Unknown
// symbols fall back to the WIN spec; the second return value tells the
// caller whether the symbol was actually known so it can warn.
func LookupContract(symbol string) (Contract, bool) {
	if c, ok := contracts[symbol]; ok {
		return c, true
	}
	return contracts[DefaultContract], false
}
