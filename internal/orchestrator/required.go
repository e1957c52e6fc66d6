package orchestrator

import (
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
)

// group is satisfied when any one of its fields is present.
type group []string

func (g group) satisfiedBy(f *domain.Fields) bool {
	for _, name := range g {
		if f.Has(name) {
			return true
		}
	}
	return false
}

func (g group) name() string {
	return strings.Join(g, "|")
}

var requiredByKind = map[domain.DocumentKind][]group{
	domain.KindBankSlip: {
		{domain.FieldAmount},
		{domain.FieldLineCode, domain.FieldBarcode, domain.FieldExternalID},
	},
	domain.KindPixReceipt: {
		{domain.FieldAmount},
		{domain.FieldExternalID, domain.FieldPixKey},
	},
	domain.KindTaxGuide: {
		{domain.FieldAmount},
		{domain.FieldLineCode, domain.FieldBarcode, domain.FieldDate},
	},
	domain.KindBankTransfer: {
		{domain.FieldAmount},
		{domain.FieldDate},
	},
	domain.KindGenericReceipt: {
		{domain.FieldAmount},
	},
}

func required(kind domain.DocumentKind) []group {
	if r, ok := requiredByKind[kind]; ok {
		return r
	}
	return requiredByKind[domain.KindGenericReceipt]
}

// candidate is a scored record from one successful backend call.
type candidate struct {
	method     domain.Method
	fields     domain.Fields
	rawText    string
	satisfied  int
	missing    []string
	complete   bool
	base       float64
	confidence float64
}

// betterThan ranks partial records: more required groups, then more fields,
// then the more trusted method.
func (c candidate) betterThan(other *candidate) bool {
	if c.satisfied != other.satisfied {
		return c.satisfied > other.satisfied
	}
	if n, m := c.fields.Count(), other.fields.Count(); n != m {
		return n > m
	}
	return c.base > other.base
}
