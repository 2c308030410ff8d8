package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// ErrInvalidDocument indicates the supplied value is not a valid CPF or CNPJ.
var ErrInvalidDocument = errors.New("invalid document")

// TaxID is a normalized CPF (11 digits) or CNPJ (14 digits). Values are only
// constructed through ParseTaxID / ParseCPF, so a non-empty TaxID has already
// passed the checksum for its length class.
type TaxID string

// String returns the normalized digit string.
func (t TaxID) String() string {
	return string(t)
}

// IsCPF reports whether the identifier belongs to an individual (CPF).
func (t TaxID) IsCPF() bool {
	return len(t) == cpfLength
}

// IsCNPJ reports whether the identifier belongs to a company (CNPJ).
func (t TaxID) IsCNPJ() bool {
	return len(t) == cnpjLength
}

// ParseTaxID strips all non-digit characters and validates the result as a
// CPF or CNPJ depending on its length. Any other length, a repeated-digit
// sequence, or a checksum mismatch fails with ErrInvalidDocument.
func ParseTaxID(raw string) (TaxID, error) {
	digits := stripNonDigits(raw)

	switch len(digits) {
	case cpfLength:
		if !validCPF(digits) {
			return "", fmt.Errorf("%w: invalid CPF", ErrInvalidDocument)
		}
	case cnpjLength:
		if !validCNPJ(digits) {
			return "", fmt.Errorf("%w: invalid CNPJ", ErrInvalidDocument)
		}
	default:
		return "", fmt.Errorf("%w: wrong length", ErrInvalidDocument)
	}

	return TaxID(digits), nil
}

// ParseCPF behaves like ParseTaxID but accepts only the 11-digit CPF class.
// Used for user accounts, which never hold company identifiers.
func ParseCPF(raw string) (TaxID, error) {
	digits := stripNonDigits(raw)
	if len(digits) != cpfLength {
		return "", fmt.Errorf("%w: wrong length", ErrInvalidDocument)
	}
	if !validCPF(digits) {
		return "", fmt.Errorf("%w: invalid CPF", ErrInvalidDocument)
	}
	return TaxID(digits), nil
}

func stripNonDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// repeatedDigits catches degenerate sequences such as "00000000000" which
// would otherwise satisfy the checksum arithmetic.
func repeatedDigits(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

func validCPF(cpf string) bool {
	if repeatedDigits(cpf) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	first := sum * 10 % 11 % 10

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	second := sum * 10 % 11 % 10

	return int(cpf[9]-'0') == first && int(cpf[10]-'0') == second
}

var cnpjWeights = [...]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

func validCNPJ(cnpj string) bool {
	if repeatedDigits(cnpj) {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(cnpj[i]-'0') * cnpjWeights[i]
	}
	first := cnpjCheckDigit(sum)

	// Second pass prepends weight 6 and covers the first check digit too.
	sum = int(cnpj[0]-'0') * 6
	for i := 0; i < 12; i++ {
		sum += int(cnpj[i+1]-'0') * cnpjWeights[i]
	}
	second := cnpjCheckDigit(sum)

	return int(cnpj[12]-'0') == first && int(cnpj[13]-'0') == second
}

func cnpjCheckDigit(sum int) int {
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
