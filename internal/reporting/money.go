package reporting

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders v as dollars with thousands separators, e.g. $1,234.56.
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(intPart) + "." + frac
}

// FormatWholeMoney renders v as whole dollars with thousands separators, e.g. $1,235.
func FormatWholeMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + groupThousands(d.StringFixed(0))
}

// FormatPercent renders a fraction as a percentage using its shortest decimal
// form, so 0.51 is "51" and 0.075 is "7.5".
func FormatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).String()
}

// FormatNumber renders v in its shortest decimal form.
func FormatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupThousands(decimal.NewFromInt(int64(-n)).String())
	}
	return groupThousands(decimal.NewFromInt(int64(n)).String())
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
