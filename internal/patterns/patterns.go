// Package patterns pulls document fields out of plain text with regular
// expressions and the synonym dictionary. It never fails: fields it cannot
// find stay absent.
package patterns

import (
	"regexp"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/synonyms"
	"github.com/mlisboa17/assistente-pessoal/internal/taxid"
	"github.com/shopspring/decimal"
)

var (
	lineFormatted = regexp.MustCompile(`\d{5}[.\s]?\d{5}\s*\d{5}[.\s]?\d{6}\s*\d{5}[.\s]?\d{6}\s*\d\s*\d{14}`)
	lineContig    = regexp.MustCompile(`(?:^|\D)(\d{47})(?:\D|$)`)
	collectionFmt = regexp.MustCompile(`8\d{10}[-\s]?\d\s*\d{11}[-\s]?\d\s*\d{11}[-\s]?\d\s*\d{11}[-\s]?\d`)
	collectionRaw = regexp.MustCompile(`(?:^|\D)(8\d{47})(?:\D|$)`)
	barcodeRaw    = regexp.MustCompile(`(?:^|\D)(\d{44})(?:\D|$)`)

	currencyAmount = regexp.MustCompile(`R\$\s*(\d[\d.,]*)`)
	firstDate      = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

	cnpjPattern = regexp.MustCompile(`(?:^|\D)(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})(?:\D|$)`)
	cpfPattern  = regexp.MustCompile(`(?:^|\D)(\d{3}\.?\d{3}\.?\d{3}-?\d{2})(?:\D|$)`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)+`)
	uuidPattern  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	phonePattern = regexp.MustCompile(`(?:\+?55\s*)?\(?\d{2}\)?\s*9\d{4}[-\s]?\d{4}\b`)
	pixKeyLabel  = regexp.MustCompile(`(?i)chave(?:\s+pix)?\s*[:\-]?\s*(\S+)`)

	e2eShape   = regexp.MustCompile(`\bE[0-9A-Za-z]{31}\b`)
	e2eLabeled = regexp.MustCompile(`(?i)\b(?:end\s*to\s*end|e2e\s*id|e2eid|id\s+(?:da\s+)?transa[cç][aã]o|autentica[cç][aã]o|id)\b\s*[:\-]?\s*([A-Za-z0-9]{10,})`)

	bankLabel  = regexp.MustCompile(`(?i)\bbanco\s*[:\-]?\s*(\d{3})\b`)
	nameCutoff = regexp.MustCompile(`(?i)\s+(?:cnpj|cpf|cpf/cnpj|cnpj/cpf|ag[eê]ncia|conta|valor)\b.*$|\s*\d{2,3}\.\d{3}\.\d{3}.*$|\s{2,}.*$`)
)

var descriptionLabels = synonyms.Set{
	"description": {"descrição", "histórico", "referente a", "referência", "mensagem", "instruções"},
}

// Extractor applies the fixed pattern sequence with a synonym dictionary.
type Extractor struct {
	set synonyms.Set
}

// New returns an Extractor using set for label lookups.
func New(set synonyms.Set) *Extractor {
	return &Extractor{set: set}
}

var defaultExtractor = New(synonyms.Default())

// Extract runs the default extractor.
func Extract(text string, hint *domain.DocumentKind) domain.Fields {
	return defaultExtractor.Extract(text, hint)
}

// Extract finds fields in text in a fixed order: line code, barcode, amount,
// date, tax ids, labelled names, then PIX key and transaction id. Equal
// inputs give equal outputs.
func (e *Extractor) Extract(text string, hint *domain.DocumentKind) domain.Fields {
	var f domain.Fields
	text = normalize.Whitespace(text)
	if text == "" {
		if hint != nil {
			f.Kind = domain.KindPtr(*hint)
		}
		return f
	}

	// Code spans are blanked before tax id scanning so their digits are not
	// mistaken for CPFs.
	scrubbed := text

	if line, span := findLine(text); line != "" {
		f.LineCode = line
		scrubbed = blank(scrubbed, span)
	}
	if m := barcodeRaw.FindStringSubmatchIndex(scrubbed); m != nil {
		f.Barcode = scrubbed[m[2]:m[3]]
		scrubbed = blank(scrubbed, [2]int{m[2], m[3]})
	}

	f.Amount = e.amount(text)
	f.Date = e.date(text)
	f.BeneficiaryTaxID, f.PayerTaxID, scrubbed = e.taxIDs(scrubbed)

	if m, ok := synonyms.FindField(text, synonyms.Beneficiary, e.set); ok {
		f.BeneficiaryName = cleanName(m.Value)
	}
	if m, ok := synonyms.FindField(text, synonyms.Payer, e.set); ok {
		f.PayerName = cleanName(m.Value)
	}
	if m, ok := synonyms.FindField(text, "description", descriptionLabels); ok {
		f.Description = strings.TrimSpace(m.Value)
	}

	if strings.Contains(normalize.Fold(text), "pix") {
		f.PixKey, f.PixKeyType = pixKey(text, scrubbed)
	}
	f.ExternalTransactionID = transactionID(scrubbed)
	f.BankCode = bankCode(text, f)

	kind := DetectKind(text, hint)
	f.Kind = &kind
	return f
}

// findLine returns the digits of the first typeable line and its span.
func findLine(text string) (string, [2]int) {
	flat := strings.ReplaceAll(text, "\n", " ")
	if loc := collectionFmt.FindStringIndex(flat); loc != nil {
		return normalize.Digits(flat[loc[0]:loc[1]]), [2]int{loc[0], loc[1]}
	}
	if m := collectionRaw.FindStringSubmatchIndex(flat); m != nil {
		return flat[m[2]:m[3]], [2]int{m[2], m[3]}
	}
	if loc := lineFormatted.FindStringIndex(flat); loc != nil {
		return normalize.Digits(flat[loc[0]:loc[1]]), [2]int{loc[0], loc[1]}
	}
	if m := lineContig.FindStringSubmatchIndex(flat); m != nil {
		return flat[m[2]:m[3]], [2]int{m[2], m[3]}
	}
	return "", [2]int{}
}

func blank(s string, span [2]int) string {
	return s[:span[0]] + strings.Repeat(" ", span[1]-span[0]) + s[span[1]:]
}

func (e *Extractor) amount(text string) *decimal.Decimal {
	if m := currencyAmount.FindStringSubmatch(text); m != nil {
		if d, err := normalize.Amount(m[1]); err == nil {
			return &d
		}
	}
	if m, ok := synonyms.FindField(text, synonyms.Amount, e.set); ok {
		if d, err := normalize.Amount(m.Value); err == nil {
			return &d
		}
	}
	return nil
}

func (e *Extractor) date(text string) *civil.Date {
	if m, ok := synonyms.FindField(text, synonyms.Date, e.set); ok {
		if d, err := normalize.Date(m.Value); err == nil {
			return &d
		}
	}
	if s := firstDate.FindString(text); s != "" {
		if d, err := normalize.Date(s); err == nil {
			return &d
		}
	}
	return nil
}

type taxIDMatch struct {
	start int
	value string
}

// taxIDs assigns the first id to the beneficiary unless a payer label
// precedes it on the same line. It also returns text with the ids blanked.
func (e *Extractor) taxIDs(text string) (beneficiary, payer, scrubbed string) {
	var found []taxIDMatch
	scrubbed = text
	for _, m := range cnpjPattern.FindAllStringSubmatchIndex(scrubbed, -1) {
		found = append(found, taxIDMatch{start: m[2], value: normalize.TaxID(scrubbed[m[2]:m[3]])})
		scrubbed = blank(scrubbed, [2]int{m[2], m[3]})
	}
	for _, m := range cpfPattern.FindAllStringSubmatchIndex(scrubbed, -1) {
		found = append(found, taxIDMatch{start: m[2], value: normalize.TaxID(scrubbed[m[2]:m[3]])})
		scrubbed = blank(scrubbed, [2]int{m[2], m[3]})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	for _, id := range found {
		lineStart := strings.LastIndexByte(text[:id.start], '\n') + 1
		prefix := text[lineStart:id.start]
		if payer == "" && synonyms.Has(prefix, synonyms.Payer, e.set) {
			payer = id.value
			continue
		}
		if beneficiary == "" {
			beneficiary = id.value
			continue
		}
		if payer == "" {
			payer = id.value
		}
	}
	return beneficiary, payer, scrubbed
}

func cleanName(s string) string {
	s = nameCutoff.ReplaceAllString(s, "")
	s = strings.Trim(s, " :-|,;")
	if len([]rune(s)) < 2 {
		return ""
	}
	return s
}

// PIX key types.
const (
	PixKeyEmail  = "email"
	PixKeyPhone  = "phone"
	PixKeyCPF    = "cpf"
	PixKeyCNPJ   = "cnpj"
	PixKeyRandom = "random"
)

// pixKey prefers an explicitly labelled key. Unlabelled phones are looked
// up in scrubbed, where tax ids have been blanked.
func pixKey(text, scrubbed string) (string, string) {
	if m := pixKeyLabel.FindStringSubmatch(text); m != nil {
		if key, typ := ClassifyPixKey(m[1]); typ != "" {
			return key, typ
		}
	}
	if m := emailPattern.FindString(text); m != "" {
		return strings.ToLower(m), PixKeyEmail
	}
	if m := uuidPattern.FindString(text); m != "" {
		return strings.ToLower(m), PixKeyRandom
	}
	if m := phonePattern.FindString(scrubbed); m != "" {
		return "+55" + strings.TrimPrefix(normalize.TaxID(m), "55"), PixKeyPhone
	}
	return "", ""
}

// ClassifyPixKey normalizes a PIX key and names its type. Unrecognized keys
// return an empty type.
func ClassifyPixKey(raw string) (string, string) {
	raw = strings.Trim(strings.TrimSpace(raw), ".,;")
	switch {
	case emailPattern.MatchString(raw):
		return strings.ToLower(emailPattern.FindString(raw)), PixKeyEmail
	case uuidPattern.MatchString(raw):
		return strings.ToLower(uuidPattern.FindString(raw)), PixKeyRandom
	}

	digits := normalize.TaxID(raw)
	switch {
	case strings.HasPrefix(raw, "+") || (len(digits) == 13 && strings.HasPrefix(digits, "55")):
		return "+55" + strings.TrimPrefix(digits, "55"), PixKeyPhone
	case len(digits) == taxid.CNPJLength:
		return digits, PixKeyCNPJ
	case len(digits) == taxid.CPFLength && taxid.ValidCPF(digits):
		return digits, PixKeyCPF
	case len(digits) == taxid.CPFLength && digits[2] == '9':
		return "+55" + digits, PixKeyPhone
	}
	return "", ""
}

func transactionID(text string) string {
	if m := e2eShape.FindString(text); m != "" {
		return m
	}
	for _, m := range e2eLabeled.FindAllStringSubmatch(text, -1) {
		if strings.ContainsAny(m[1], "0123456789") {
			return m[1]
		}
	}
	return ""
}

func bankCode(text string, f domain.Fields) string {
	if m := bankLabel.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	code := f.Barcode
	if code == "" {
		code = f.LineCode
	}
	if len(code) >= 3 && !boleto.IsCollection(code) {
		return code[:3]
	}
	return ""
}
