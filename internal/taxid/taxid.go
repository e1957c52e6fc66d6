// Package taxid validates CPF and CNPJ numbers.
package taxid

import (
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
)

const (
	CPFLength  = 11
	CNPJLength = 14
)

// Kind names the type of a tax id.
type Kind string

const (
	KindCPF     Kind = "cpf"
	KindCNPJ    Kind = "cnpj"
	KindUnknown Kind = ""
)

// KindOf returns the kind implied by the digit count.
func KindOf(s string) Kind {
	switch len(normalize.Digits(s)) {
	case CPFLength:
		return KindCPF
	case CNPJLength:
		return KindCNPJ
	}
	return KindUnknown
}

// Valid reports whether s is a CPF or CNPJ with correct check digits.
func Valid(s string) bool {
	d := normalize.Digits(s)
	switch len(d) {
	case CPFLength:
		return ValidCPF(d)
	case CNPJLength:
		return ValidCNPJ(d)
	}
	return false
}

// ValidCPF checks the two CPF check digits. Repeated-digit numbers such as
// 111.111.111-11 pass the arithmetic but are rejected.
func ValidCPF(s string) bool {
	d := normalize.Digits(s)
	if len(d) != CPFLength || repeated(d) {
		return false
	}
	return d[9:] == CPFCheckDigits(d[:9])
}

// ValidCNPJ checks the two CNPJ check digits.
func ValidCNPJ(s string) bool {
	d := normalize.Digits(s)
	if len(d) != CNPJLength || repeated(d) {
		return false
	}
	return d[12:] == CNPJCheckDigits(d[:12])
}

// CPFCheckDigits computes the two check digits for a 9-digit CPF base.
func CPFCheckDigits(base string) string {
	first := cpfDigit(base, 10)
	second := cpfDigit(base+string(rune('0'+first)), 11)
	return string([]byte{byte('0' + first), byte('0' + second)})
}

func cpfDigit(d string, startWeight int) int {
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * (startWeight - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// CNPJCheckDigits computes the two check digits for a 12-digit CNPJ base.
func CNPJCheckDigits(base string) string {
	first := cnpjDigit(base, cnpjWeights1)
	second := cnpjDigit(base+string(rune('0'+first)), cnpjWeights2)
	return string([]byte{byte('0' + first), byte('0' + second)})
}

func cnpjDigit(d string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(d[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// Mask renders a CPF as 000.000.000-00 and a CNPJ as 00.000.000/0000-00.
// Other inputs are returned unchanged.
func Mask(s string) string {
	d := normalize.Digits(s)
	switch len(d) {
	case CPFLength:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	case CNPJLength:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	}
	return s
}
