package company

import (
	"github.com/frahmantamala/reputation-management/internal"
)

const cnpjLength = 14

// CNPJ is a validated Brazilian company registration number, digits only.
type CNPJ string

// NewCNPJ strips punctuation and checks length, repeated digits and both
// mod-11 check digits.
func NewCNPJ(raw string) (CNPJ, error) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	if len(digits) != cnpjLength {
		return "", internal.NewValidationFieldError("cnpj", "CNPJ must contain exactly 14 digits", internal.ErrCodeInvalidCNPJ)
	}
	if !validCNPJDigits(digits) {
		return "", internal.NewValidationFieldError("cnpj", "Invalid CNPJ", internal.ErrCodeInvalidCNPJ)
	}
	return CNPJ(digits), nil
}

func (c CNPJ) String() string { return string(c) }

// Formatted renders 00.000.000/0000-00.
func (c CNPJ) Formatted() string {
	s := string(c)
	if len(s) != cnpjLength {
		return s
	}
	return s[0:2] + "." + s[2:5] + "." + s[5:8] + "/" + s[8:12] + "-" + s[12:14]
}

func validCNPJDigits(d []byte) bool {
	repeated := true
	for _, b := range d[1:] {
		if b != d[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	return checkDigit(d[:12]) == d[12]-'0' && checkDigit(d[:13]) == d[13]-'0'
}

// checkDigit weights the digits right to left with 2..9, wrapping back to 2.
func checkDigit(d []byte) byte {
	sum := 0
	weight := len(d) - 7
	for _, b := range d {
		sum += int(b-'0') * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}
	if r := sum % 11; r >= 2 {
		return byte(11 - r)
	}
	return 0
}
