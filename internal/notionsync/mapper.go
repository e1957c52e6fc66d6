package notionsync

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
)

// Property names of the documents database.
const (
	PropDocumentID  = "Document ID"
	PropKind        = "Kind"
	PropAmount      = "Amount"
	PropDate        = "Due Date"
	PropBeneficiary = "Beneficiary"
	PropReference   = "Reference"
	PropMethod      = "Method"
	PropConfidence  = "Confidence"
	PropCategory    = "Category"
	PropStatus      = "Status"
	PropReminder    = "Reminder"
)

// Status values written to PropStatus.
const (
	StatusStored            = "STORED"
	StatusAwaitingConfirm   = "AWAITING_CONFIRMATION"
	StatusReminderScheduled = "REMINDER_SCHEDULED"
)

// DocumentPage is the typed content of one page of the documents database.
// Unset fields are not written, so an update only touches what it carries.
type DocumentPage struct {
	DocumentID string
	Document   *domain.ExtractedDocument
	Category   *domain.CategorySuggestion
	Status     string
	Reminder   *civil.Date
}

// NewDocumentPage builds the page for an exported document.
func NewDocumentPage(doc domain.ExtractedDocument, cat *domain.CategorySuggestion, status string) DocumentPage {
	return DocumentPage{DocumentID: doc.ID, Document: &doc, Category: cat, Status: status}
}

// ReminderPage marks a document's page with the date the payment is due.
func ReminderPage(documentID string, due civil.Date) DocumentPage {
	return DocumentPage{DocumentID: documentID, Status: StatusReminderScheduled, Reminder: &due}
}

// Properties renders the page for the Notion API.
func (p DocumentPage) Properties() notionapi.Properties {
	props := notionapi.Properties{}
	if p.DocumentID != "" {
		props[PropDocumentID] = titleProperty(p.DocumentID)
	}
	if p.Status != "" {
		props[PropStatus] = selectProperty(p.Status)
	}
	if p.Reminder != nil {
		props[PropReminder] = dateProperty(*p.Reminder)
	}
	if p.Category != nil {
		props[PropCategory] = selectProperty(string(p.Category.Category))
	}

	doc := p.Document
	if doc == nil {
		return props
	}
	props[PropKind] = selectProperty(string(doc.Kind))
	props[PropMethod] = selectProperty(string(doc.Method))
	props[PropConfidence] = notionapi.NumberProperty{Number: doc.Confidence}
	if doc.HasAmount() {
		amount, _ := doc.Amount.Float64()
		props[PropAmount] = notionapi.NumberProperty{Number: amount}
	}
	if doc.Date != nil {
		props[PropDate] = dateProperty(*doc.Date)
	}
	if doc.BeneficiaryName != "" {
		props[PropBeneficiary] = richTextProperty(doc.BeneficiaryName)
	}
	if ref := reference(*doc); ref != "" {
		props[PropReference] = richTextProperty(ref)
	}
	return props
}

func reference(doc domain.ExtractedDocument) string {
	switch {
	case doc.LineCode != "":
		return doc.LineCode
	case doc.Barcode != "":
		return doc.Barcode
	case doc.ExternalTransactionID != "":
		return doc.ExternalTransactionID
	}
	return doc.PixKey
}

func titleProperty(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Title: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

func richTextProperty(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

func selectProperty(s string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Select: notionapi.Option{Name: s}}
}

func dateProperty(d civil.Date) notionapi.DateProperty {
	start := notionapi.Date(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
}
