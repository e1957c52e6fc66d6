// Package normalize turns the loosely formatted values found in Brazilian
// financial documents (amounts, dates, tax ids) into canonical values.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ParseError reports a value that could not be normalized. It stays local to
// the field being parsed; callers treat the field as absent.
type ParseError struct {
	Input  string
	Kind   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("normalize: cannot parse %s %q: %s", e.Kind, e.Input, e.Reason)
}

const (
	KindAmount = "amount"
	KindDate   = "date"
)

// Default date layout (DD/MM/YYYY).
const LayoutBR = "02/01/2006"

// Other layouts callers may pass as hints to Date.
const (
	LayoutBRDash  = "02-01-2006"
	LayoutBRDot   = "02.01.2006"
	LayoutBRShort = "02/01/06"
	LayoutISO     = "2006-01-02"
)

var (
	amountToken  = regexp.MustCompile(`\d[\d.,]*`)
	thousandsDot = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	thousandsCom = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	dateToken    = regexp.MustCompile(`\d{1,4}[/.\-]\d{1,2}[/.\-]\d{2,4}`)
)

// Amount parses Brazilian (1.234,56) and plain (1234.56) monetary values.
// Currency markers and spaces are ignored; the result has two decimal places.
//
// When both separators appear the last one is the decimal separator. A lone
// comma is decimal. A lone dot is a thousands separator only when it groups
// exactly three digits (1.234, 12.345.678).
func Amount(text string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("R$", " ", "\u00a0", "", " ", "").Replace(text)
	tok := amountToken.FindString(cleaned)
	tok = strings.TrimRight(tok, ".,")
	if tok == "" {
		return decimal.Zero, &ParseError{Input: text, Kind: KindAmount, Reason: "no monetary digits"}
	}

	lastDot := strings.LastIndex(tok, ".")
	lastComma := strings.LastIndex(tok, ",")

	var canonical string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec := lastDot
		if lastComma > lastDot {
			dec = lastComma
		}
		canonical = stripSeparators(tok[:dec]) + "." + stripSeparators(tok[dec+1:])
	case lastComma >= 0:
		if strings.Count(tok, ",") > 1 && thousandsCom.MatchString(tok) {
			canonical = stripSeparators(tok)
		} else {
			canonical = stripSeparators(tok[:lastComma]) + "." + tok[lastComma+1:]
		}
	case lastDot >= 0:
		if thousandsDot.MatchString(tok) {
			canonical = stripSeparators(tok)
		} else {
			canonical = stripSeparators(tok[:lastDot]) + "." + tok[lastDot+1:]
		}
	default:
		canonical = tok
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, &ParseError{Input: text, Kind: KindAmount, Reason: err.Error()}
	}
	return d.Round(2), nil
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

// FormatBRL renders d as "R$ 1.234,56". It is the inverse of Amount.
func FormatBRL(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + frac
}

// Date parses the first date found in text. Layouts are tried in order; the
// default is DD/MM/YYYY. Single-digit day and month are accepted.
func Date(text string, layouts ...string) (civil.Date, error) {
	if len(layouts) == 0 {
		layouts = []string{LayoutBR}
	}

	tok := dateToken.FindString(text)
	if tok == "" {
		return civil.Date{}, &ParseError{Input: text, Kind: KindDate, Reason: "no date found"}
	}
	tok = padDateParts(tok)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, tok); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, &ParseError{Input: text, Kind: KindDate, Reason: dateReason(tok)}
}

func padDateParts(tok string) string {
	sep := tok[strings.IndexAny(tok, "/.-")]
	parts := strings.Split(tok, string(sep))
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, string(sep))
}

// dateReason explains why a date token was rejected.
func dateReason(tok string) string {
	parts := strings.FieldsFunc(tok, func(r rune) bool { return r == '/' || r == '.' || r == '-' })
	if len(parts) != 3 {
		return "unrecognized layout"
	}
	day, month := atoi(parts[0]), atoi(parts[1])
	if len(parts[0]) == 4 {
		day = atoi(parts[2])
	}
	switch {
	case month < 1 || month > 12:
		return "month out of range"
	case day < 1 || day > 31:
		return "day out of range"
	default:
		return "date does not exist or layout mismatch"
	}
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// Digits strips every character that is not an ASCII digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// TaxID keeps only the digits of a CPF or CNPJ. Checksums are not verified.
func TaxID(text string) string {
	return Digits(text)
}
