// Package boleto converts between the 47-digit typeable line and the 44-digit
// barcode of Brazilian bank slips and decodes the fields they carry.
package boleto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/shopspring/decimal"
)

const (
	LineLength           = 47
	BarcodeLength        = 44
	CollectionLineLength = 48
)

var (
	// ErrLength is returned when a code does not have the expected digit count.
	ErrLength = errors.New("boleto: wrong number of digits")

	// ErrCollection is returned for collection (arrecadação) codes, which start
	// with 8 and use a different layout.
	ErrCollection = errors.New("boleto: collection codes are not supported")

	// ErrCheckDigit is returned when a check digit does not match.
	ErrCheckDigit = errors.New("boleto: check digit mismatch")
)

// Due date factors count days from this base. The factor wrapped from 9999
// back to 1000 on 2025-02-22, so every factor maps to one date per 9000-day
// cycle.
var factorBase = civil.Date{Year: 1997, Month: time.October, Day: 7}

const factorCycle = 9000

// Info is what a barcode says about the slip.
type Info struct {
	Barcode  string
	Line     string
	BankCode string
	BankName string
	Currency string
	Amount   decimal.Decimal
	DueDate  *civil.Date
}

// IsCollection reports whether code is a collection (utility, tax) code.
func IsCollection(code string) bool {
	d := normalize.Digits(code)
	return len(d) > 0 && d[0] == '8'
}

// LineToBarcode rebuilds the barcode from a typeable line. Field check digits
// are verified.
func LineToBarcode(line string) (string, error) {
	d := normalize.Digits(line)
	if IsCollection(d) {
		return "", ErrCollection
	}
	if len(d) != LineLength {
		return "", fmt.Errorf("%w: line has %d digits, want %d", ErrLength, len(d), LineLength)
	}
	if err := checkFields(d); err != nil {
		return "", err
	}
	return d[0:4] + d[32:33] + d[33:47] + d[4:9] + d[10:20] + d[21:31], nil
}

// BarcodeToLine builds the typeable line from a barcode, computing the three
// field check digits.
func BarcodeToLine(barcode string) (string, error) {
	d := normalize.Digits(barcode)
	if IsCollection(d) {
		return "", ErrCollection
	}
	if len(d) != BarcodeLength {
		return "", fmt.Errorf("%w: barcode has %d digits, want %d", ErrLength, len(d), BarcodeLength)
	}

	f1 := d[0:4] + d[19:24]
	f2 := d[24:34]
	f3 := d[34:44]

	var b strings.Builder
	b.Grow(LineLength)
	b.WriteString(f1)
	b.WriteByte(byte('0' + Mod10(f1)))
	b.WriteString(f2)
	b.WriteByte(byte('0' + Mod10(f2)))
	b.WriteString(f3)
	b.WriteByte(byte('0' + Mod10(f3)))
	b.WriteString(d[4:5])
	b.WriteString(d[5:19])
	return b.String(), nil
}

// ValidBarcode checks length and the general check digit.
func ValidBarcode(barcode string) bool {
	d := normalize.Digits(barcode)
	if len(d) != BarcodeLength || IsCollection(d) {
		return false
	}
	return int(d[4]-'0') == Mod11(d[0:4]+d[5:])
}

// ValidLine checks length, field check digits and the general check digit.
func ValidLine(line string) bool {
	bc, err := LineToBarcode(line)
	if err != nil {
		return false
	}
	return ValidBarcode(bc)
}

// Consistent reports whether a line and a barcode describe the same slip.
func Consistent(line, barcode string) bool {
	bc, err := LineToBarcode(line)
	if err != nil {
		return false
	}
	return bc == normalize.Digits(barcode)
}

// Format renders a line as AAAAA.AAAAA BBBBB.BBBBBB CCCCC.CCCCCC D EEEEEEEEEEEEEE.
// Inputs that are not 47 digits are returned unchanged.
func Format(line string) string {
	d := normalize.Digits(line)
	if len(d) != LineLength {
		return line
	}
	return d[0:5] + "." + d[5:10] + " " +
		d[10:15] + "." + d[15:21] + " " +
		d[21:26] + "." + d[26:32] + " " +
		d[32:33] + " " + d[33:47]
}

// Decode reads bank, amount and due date from a line or a barcode. now picks
// the due date cycle closest to the present.
func Decode(code string, now time.Time) (Info, error) {
	d := normalize.Digits(code)
	if IsCollection(d) {
		return Info{}, ErrCollection
	}

	var info Info
	switch len(d) {
	case LineLength:
		bc, err := LineToBarcode(d)
		if err != nil {
			return Info{}, err
		}
		info.Line, info.Barcode = d, bc
	case BarcodeLength:
		line, err := BarcodeToLine(d)
		if err != nil {
			return Info{}, err
		}
		info.Line, info.Barcode = line, d
	default:
		return Info{}, fmt.Errorf("%w: got %d digits", ErrLength, len(d))
	}

	if !ValidBarcode(info.Barcode) {
		return Info{}, ErrCheckDigit
	}

	bc := info.Barcode
	info.BankCode = bc[0:3]
	info.BankName = BankName(info.BankCode)
	info.Currency = bc[3:4]

	cents, _ := strconv.ParseInt(bc[9:19], 10, 64)
	info.Amount = decimal.New(cents, -2)

	factor, _ := strconv.Atoi(bc[5:9])
	info.DueDate = DueDate(factor, now)

	return info, nil
}

// DueDate resolves a due date factor. Factor zero means the slip has no due date.
func DueDate(factor int, now time.Time) *civil.Date {
	if factor <= 0 {
		return nil
	}
	today := civil.DateOf(now)

	best := factorBase.AddDays(factor)
	bestDist := absDays(best.DaysSince(today))
	for cycle := 1; cycle <= 2; cycle++ {
		candidate := factorBase.AddDays(factor + cycle*factorCycle)
		if dist := absDays(candidate.DaysSince(today)); dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return &best
}

// Mod10 computes the check digit of a line field.
func Mod10(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		p := int(digits[i]-'0') * weight
		sum += p/10 + p%10
		if weight == 2 {
			weight = 1
		} else {
			weight = 2
		}
	}
	return (10 - sum%10) % 10
}

// Mod11 computes the general check digit over the 43 barcode digits that
// exclude position 5.
func Mod11(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	dv := 11 - sum%11
	if dv == 0 || dv == 1 || dv >= 10 {
		return 1
	}
	return dv
}

func checkFields(line string) error {
	fields := []struct {
		body string
		dv   byte
	}{
		{line[0:9], line[9]},
		{line[10:20], line[20]},
		{line[21:31], line[31]},
	}
	for i, f := range fields {
		if int(f.dv-'0') != Mod10(f.body) {
			return fmt.Errorf("%w: field %d", ErrCheckDigit, i+1)
		}
	}
	return nil
}

func absDays(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
