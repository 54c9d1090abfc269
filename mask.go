package cfextrato

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mask patterns. Each '#' takes the next character of the input.
const (
	MaskCNPJ   = "##.###.###/####-##" // entity tax ID, 14 digits
	MaskCPF    = "###.###.###-##"     // individual tax ID, 11 digits
	MaskCEP    = "#####-###"          // postal code, 8 digits
	MaskSerial = "###.###.###"        // SAT serial number, 9 digits
)

const maskPlaceholder = '#'

// Mask fills the placeholders of pattern with the characters of value, in order.
// Returns ErrInvalidMaskInput if value length differs from the placeholder count.
func Mask(value, pattern string) (string, error) {
	want := strings.Count(pattern, string(maskPlaceholder))
	if got := utf8.RuneCountInString(value); got != want {
		return "", fmt.Errorf("%w: %q has %d characters, pattern %q needs %d", ErrInvalidMaskInput, value, got, pattern, want)
	}

	src := []rune(value)
	var b strings.Builder
	b.Grow(len(pattern))
	i := 0
	for _, r := range pattern {
		if r == maskPlaceholder {
			b.WriteRune(src[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// MaskEntityTaxID formats a 14-digit CNPJ.
func MaskEntityTaxID(cnpj string) (string, error) {
	return Mask(cnpj, MaskCNPJ)
}

// MaskIndividualTaxID formats an 11-digit CPF.
func MaskIndividualTaxID(cpf string) (string, error) {
	return Mask(cpf, MaskCPF)
}

// MaskPostalCode formats an 8-digit CEP.
func MaskPostalCode(cep string) (string, error) {
	return Mask(cep, MaskCEP)
}

// MaskSerialNumber formats a 9-digit SAT serial number.
func MaskSerialNumber(serial string) (string, error) {
	return Mask(serial, MaskSerial)
}
