package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coupon is either a percentage of the subtotal or a flat amount off.
type Coupon struct {
	Code    string
	Percent decimal.Decimal
	Flat    int64
}

// Coupons known to the store, keyed by upper-case code.
var Coupons = map[string]Coupon{
	"WELCOME10": {Code: "WELCOME10", Percent: decimal.RequireFromString("0.10")},
	"SAVE20":    {Code: "SAVE20", Percent: decimal.RequireFromString("0.20")},
	"FLAT100":   {Code: "FLAT100", Flat: 100},
}

// LookupCoupon matches code case-insensitively.
func LookupCoupon(code string) (Coupon, bool) {
	c, ok := Coupons[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Discount returns the whole-rupee discount for subtotal, never more than subtotal.
func (c Coupon) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	if c.Flat > 0 {
		d = c.Flat
	} else {
		d = decimal.NewFromInt(subtotal).Mul(c.Percent).Round(0).IntPart()
	}
	return min(d, subtotal)
}

const (
	FreeShippingAbove int64 = 499
	ShippingFee       int64 = 49
)

// Shipping is free above FreeShippingAbove.
func Shipping(subtotal int64) int64 {
	if subtotal > FreeShippingAbove {
		return 0
	}
	return ShippingFee
}
