package domain

import "strings"

const (
	cardNumberLen = 19 // 16 digits in four groups
	expiryLen     = 5  // MM/YY
	cvvLen        = 3
)

// CardInput is the payment form state. It never leaves the session.
type CardInput struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the first 16 digits of raw in blocks of four.
// Fewer than four digits are returned ungrouped.
func FormatCardNumber(raw string) string {
	v := digitsOnly(raw)
	if len(v) < 4 {
		return v
	}
	if len(v) > 16 {
		v = v[:16]
	}
	parts := make([]string, 0, 4)
	for i := 0; i < len(v); i += 4 {
		parts = append(parts, v[i:min(i+4, len(v))])
	}
	return strings.Join(parts, " ")
}

// FormatExpiry keeps up to four digits as MM/YY.
func FormatExpiry(raw string) string {
	v := digitsOnly(raw)
	if len(v) > 4 {
		v = v[:4]
	}
	if len(v) >= 2 {
		return v[:2] + "/" + v[2:]
	}
	return v
}

func FormatCVV(raw string) string {
	v := digitsOnly(raw)
	if len(v) > cvvLen {
		v = v[:cvvLen]
	}
	return v
}

// ApplyCardNumber is one keystroke on the number field: the edit is ignored
// when the formatted value would overflow the field.
func ApplyCardNumber(prev, raw string) string {
	if f := FormatCardNumber(raw); len(f) <= cardNumberLen {
		return f
	}
	return prev
}

func ApplyExpiry(prev, raw string) string {
	if f := FormatExpiry(raw); len(f) <= expiryLen {
		return f
	}
	return prev
}

// ApplyCVV refuses an edit carrying more than three digits.
func ApplyCVV(prev, raw string) string {
	if v := digitsOnly(raw); len(v) <= cvvLen {
		return v
	}
	return prev
}

func ApplyHolder(raw string) string { return strings.ToUpper(raw) }

// Brand is the cosmetic badge for a card number.
func Brand(number string) string {
	v := digitsOnly(number)
	if v == "" {
		return "Card"
	}
	switch v[0] {
	case '4':
		return "Visa"
	case '5', '2':
		return "Mastercard"
	case '3':
		return "American Express"
	}
	return "Card"
}

func (c CardInput) Missing() []string {
	var out []string
	if len(c.Number) != cardNumberLen {
		out = append(out, "number")
	}
	if len(c.Expiry) != expiryLen {
		out = append(out, "expiry")
	}
	if len(c.CVV) != cvvLen {
		out = append(out, "cvv")
	}
	if c.Holder == "" {
		out = append(out, "holder")
	}
	return out
}

func (c CardInput) Complete() bool { return len(c.Missing()) == 0 }

func (c CardInput) Validate() error { return incomplete(c.Missing()) }

// Masked hides every digit but the last four, keeping the grouping.
func (c CardInput) Masked() string {
	digits := 0
	for _, r := range c.Number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	b := []byte(c.Number)
	seen := 0
	for i, ch := range b {
		if ch < '0' || ch > '9' {
			continue
		}
		if seen < digits-4 {
			b[i] = '*'
		}
		seen++
	}
	return string(b)
}
