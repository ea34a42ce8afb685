package validators

import "strings"

// NormalizePhone strips formatting from a phone number, keeping digits and a
// leading plus. Clients and loyalty counters are keyed by the normalized
// form, so "(11) 98765-4321" and "11987654321" resolve to the same record.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPhoneValid accepts normalized numbers of plausible length.
func IsPhoneValid(phone string) bool {
	n := NormalizePhone(phone)
	n = strings.TrimPrefix(n, "+")
	return len(n) >= 8 && len(n) <= 15
}
