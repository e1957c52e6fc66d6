package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/boleto"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/patterns"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

var errNoObject = errors.New("no complete JSON object in reply")

var replySchema = jsonschema.MustCompileString("vision_reply.json", visionReplySchema)

// cleanModelJSON removes Markdown fences and keeps the first balanced JSON
// object of the reply.
func cleanModelJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoObject
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoObject
}

// parseVisionReply turns a model reply into fields. Null and empty values are
// treated as absent; values that do not normalize are dropped.
func parseVisionReply(raw string) (domain.Fields, error) {
	clean, err := cleanModelJSON(raw)
	if err != nil {
		return domain.Fields{}, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return domain.Fields{}, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if err := replySchema.Validate(doc); err != nil {
		return domain.Fields{}, fmt.Errorf("reply does not match schema: %w", err)
	}

	var f domain.Fields
	if k, ok := domain.ParseKind(str(doc, "tipo")); ok {
		f.Kind = &k
	}
	f.Amount = replyAmount(doc["valor"])

	if s := str(doc, "vencimento"); s != "" {
		if d, err := normalize.Date(s, normalize.LayoutBR, normalize.LayoutISO); err == nil {
			f.Date = &d
		}
	}

	if line := normalize.Digits(str(doc, "linha_digitavel")); len(line) == boleto.LineLength || len(line) == boleto.CollectionLineLength {
		f.LineCode = line
	}
	if bc := normalize.Digits(str(doc, "codigo_barras")); len(bc) == boleto.BarcodeLength {
		f.Barcode = bc
	}

	f.BeneficiaryName = str(doc, "beneficiario")
	f.PayerName = str(doc, "pagador")
	f.BeneficiaryTaxID = normalize.TaxID(str(doc, "cnpj_cpf_beneficiario"))
	f.PayerTaxID = normalize.TaxID(str(doc, "cpf_cnpj_pagador"))
	f.ExternalTransactionID = str(doc, "id_transacao")
	f.Description = str(doc, "descricao")

	if key, typ := patterns.ClassifyPixKey(str(doc, "chave_pix")); typ != "" {
		f.PixKey, f.PixKeyType = key, typ
	}
	if bank := normalize.TaxID(str(doc, "banco")); len(bank) == 3 {
		f.BankCode = bank
	}

	return f, nil
}

func str(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.EqualFold(s, "null") {
			return ""
		}
		return s
	case json.Number:
		return v.String()
	}
	return ""
}

func replyAmount(v any) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case string:
		d, err = normalize.Amount(x)
	default:
		return nil
	}
	if err != nil || !d.IsPositive() {
		return nil
	}
	d = d.Round(2)
	return &d
}

// hasKeyFields reports whether the reply carries anything the cascade can
// use: an amount or a payment reference.
func hasKeyFields(f domain.Fields) bool {
	return f.Amount != nil || f.LineCode != "" || f.Barcode != "" ||
		f.ExternalTransactionID != "" || f.PixKey != ""
}
