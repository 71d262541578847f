package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Coerce parses a marketplace amount that may arrive as "₹1,234.50",
// "1234.50" or a bare number, stripping currency symbols and separators.
// Unparseable input coerces to zero rather than failing the aggregate.
func Coerce(value string) decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(value), "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

// CoerceFloat is Coerce with a float64 result for aggregate math.
func CoerceFloat(value string) float64 {
	f, _ := Coerce(value).Float64()
	return f
}

// FormatINR renders an amount as a rupee string with Indian digit grouping
// (₹12,34,567) and no fraction digits.
func FormatINR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	neg := d.IsNegative()
	digits := d.Abs().String()

	grouped := groupIndian(digits)
	if neg {
		return "₹-" + grouped
	}
	return "₹" + grouped
}

// groupIndian inserts commas in the Indian numbering style: the last three
// digits form one group, everything before that groups in pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}
