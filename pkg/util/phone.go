package util

import "strings"

// NormalizePhone reduces a phone number to a canonical "+<digits>" form.
// Local Ukrainian numbers (leading 0, or a bare 10-digit string) get the
// +38 country prefix so the same number always compares equal.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	normalized := b.String()

	if strings.HasPrefix(normalized, "0") && len(normalized) >= 10 {
		normalized = "+38" + normalized
	}
	if len(normalized) == 10 && !strings.HasPrefix(normalized, "+") {
		normalized = "+38" + normalized
	}
	if normalized != "" && !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}

// ValidPhone reports whether the number carries at least 10 digits.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}
