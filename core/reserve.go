package core

import (
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 6 // 6 decimal places, matching the commitment format

// MeetsReserve returns true if the revealed amount meets or exceeds the
// reserve price. Amounts are rounded to monetaryPrecision first so that the
// comparison agrees with the precision the commitment hash binds.
func MeetsReserve(amount, reservePrice decimal.Decimal) bool {
	return amount.Round(monetaryPrecision).GreaterThanOrEqual(reservePrice.Round(monetaryPrecision))
}
