package notifications

import "github.com/shopspring/decimal"

func formatPrice(v float64) string {
	if v < 0 {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
