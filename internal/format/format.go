package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPrice renders price times quantity as "$1,234.56". A quantity of
// zero or less counts as one. Unparsable prices yield "".
func DisplayPrice(price string, quantity int) string {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return ""
	}
	if quantity <= 0 {
		quantity = 1
	}
	return Dollars(d.Mul(decimal.NewFromInt(int64(quantity))))
}

// DisplayPriceRange renders a single price when min equals max and
// "min - max" otherwise.
func DisplayPriceRange(min, max string) string {
	lo, err := decimal.NewFromString(strings.TrimSpace(min))
	if err != nil {
		return ""
	}
	hi, err := decimal.NewFromString(strings.TrimSpace(max))
	if err != nil {
		return ""
	}
	if lo.Equal(hi) {
		return Dollars(hi)
	}
	return Dollars(lo) + " - " + Dollars(hi)
}

// Dollars formats d with a dollar sign, thousands separators and two decimals.
func Dollars(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// DisplayAddress renders "City, ST Zip". When none of the parts is present
// the result is empty; otherwise missing parts get placeholders.
func DisplayAddress(city, stateCode, zip *string) string {
	c, s, z := value(city), value(stateCode), value(zip)
	if c == "" && s == "" && z == "" {
		return ""
	}
	if c == "" {
		c = "Unknown City"
	}
	if s == "" {
		s = "??"
	}
	if z == "" {
		z = "Unknown Zip"
	}
	return c + ", " + s + " " + z
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// StandardizePhone reduces a phone number to E.164-like form. Ten digit
// numbers are assumed to be North American.
func StandardizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch len(d) {
	case 0:
		return ""
	case 10:
		return "+1" + d
	default:
		return "+" + d
	}
}
