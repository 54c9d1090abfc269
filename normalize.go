package cfextrato

import (
	"fmt"
	"strings"
	"time"
)

// Document key layout.
const (
	documentIDPrefixLen = 3  // "CFe"
	DocumentKeyLength   = 44 // access key digits
)

// Tax ID lengths used to pick a recipient mask.
const (
	cpfLength  = 11
	cnpjLength = 14
)

// issuedAtLayout parses the concatenated dEmi + hEmi strings.
const issuedAtLayout = "20060102150405"

// ViewModel is the flat, template-ready record built from one Document.
// It is built once by Normalize and not modified afterwards.
type ViewModel struct {
	Logo           string // data URI, empty when no logo
	Issuer         Issuer
	Identification Identification
	Totals         Totals
	IssuedAt       time.Time // wall clock of emission, in UTC
	DocumentKey    string    // Id without its 3-char prefix
	DocumentID     string    // raw Id attribute, used as download name
	Recipient      *Recipient
	QRPayload      string
	Items          []Item
	Payments       []Payment
	ChangeDue      string
	AdditionalInfo *AdditionalInfo
	Delivery       *Delivery
	AppQueryNotice string
}

// Normalize maps a parsed document into a ViewModel.
// logo may be nil. The document is not modified.
//
// Returns ErrMalformedDocument when a required node is missing and
// ErrUnsupportedDate when dEmi/hEmi are not 8 and 6 digits.
func Normalize(doc *Document, logo *Logo, appQueryNotice string) (*ViewModel, error) {
	inf, err := requireNodes(doc)
	if err != nil {
		return nil, err
	}

	key, err := documentKey(inf.ID)
	if err != nil {
		return nil, err
	}

	issuer, err := maskIssuer(*inf.Issuer)
	if err != nil {
		return nil, err
	}

	ide := *inf.Identification
	if ide.SerialNumber, err = MaskSerialNumber(ide.SerialNumber); err != nil {
		return nil, fmt.Errorf("%w: ide/nserieSAT: %w", ErrMalformedDocument, err)
	}

	issuedAt, err := parseIssuedAt(ide.EmissionDate, ide.EmissionTime)
	if err != nil {
		return nil, err
	}

	vm := &ViewModel{
		Logo:           logo.DataURI(),
		Issuer:         issuer,
		Identification: ide,
		Totals:         *inf.Totals,
		IssuedAt:       issuedAt,
		DocumentKey:    key,
		DocumentID:     inf.ID,
		Recipient:      normalizeRecipient(inf.Recipient),
		Items:          stripItemAttributes(inf.Items),
		Payments:       append([]Payment(nil), inf.Payments.Methods...),
		ChangeDue:      inf.Payments.ChangeDue,
		AdditionalInfo: clone(inf.AdditionalInfo),
		Delivery:       clone(inf.Delivery),
		AppQueryNotice: appQueryNotice,
	}

	var recipientTaxID string
	if vm.Recipient != nil {
		recipientTaxID = vm.Recipient.TaxID
	}
	vm.QRPayload = BuildQRPayload(key, issuedAt, vm.Totals.Value, recipientTaxID, ide.QRCodeSignature)

	return vm, nil
}

// BuildQRPayload assembles the 5-field verification string printed as a QR code:
// key|YYYYMMDDHHMMSS|total|recipient tax ID|signature.
func BuildQRPayload(key string, issuedAt time.Time, total, recipientTaxID, signature string) string {
	return strings.Join([]string{
		key,
		issuedAt.Format(issuedAtLayout),
		total,
		recipientTaxID,
		signature,
	}, "|")
}

// requireNodes checks required sections in document order and returns the
// first one missing.
func requireNodes(doc *Document) (*InfCFe, error) {
	if doc == nil || doc.InfCFe == nil {
		return nil, fmt.Errorf("%w: missing infCFe", ErrMalformedDocument)
	}
	inf := doc.InfCFe

	switch {
	case inf.ID == "":
		return nil, fmt.Errorf("%w: missing infCFe/@Id", ErrMalformedDocument)
	case inf.Identification == nil:
		return nil, fmt.Errorf("%w: missing ide", ErrMalformedDocument)
	case inf.Issuer == nil:
		return nil, fmt.Errorf("%w: missing emit", ErrMalformedDocument)
	case len(inf.Items) == 0:
		return nil, fmt.Errorf("%w: missing det", ErrMalformedDocument)
	case inf.Totals == nil:
		return nil, fmt.Errorf("%w: missing total", ErrMalformedDocument)
	case inf.Payments == nil || len(inf.Payments.Methods) == 0:
		return nil, fmt.Errorf("%w: missing pgto/MP", ErrMalformedDocument)
	}
	return inf, nil
}

// documentKey strips the fixed prefix from the Id attribute.
func documentKey(id string) (string, error) {
	if len(id) != documentIDPrefixLen+DocumentKeyLength {
		return "", fmt.Errorf("%w: infCFe/@Id %q is not a %d-char prefix plus a %d-char key",
			ErrMalformedDocument, id, documentIDPrefixLen, DocumentKeyLength)
	}
	return id[documentIDPrefixLen:], nil
}

// maskIssuer returns a copy of the issuer with CNPJ and CEP formatted.
func maskIssuer(issuer Issuer) (Issuer, error) {
	var err error
	if issuer.TaxID, err = MaskEntityTaxID(issuer.TaxID); err != nil {
		return Issuer{}, fmt.Errorf("%w: emit/CNPJ: %w", ErrMalformedDocument, err)
	}
	if issuer.Address.PostalCode, err = MaskPostalCode(issuer.Address.PostalCode); err != nil {
		return Issuer{}, fmt.Errorf("%w: emit/enderEmit/CEP: %w", ErrMalformedDocument, err)
	}
	return issuer, nil
}

// parseIssuedAt joins the 8-digit date and 6-digit time into one instant.
func parseIssuedAt(date, clock string) (time.Time, error) {
	if len(date) != 8 || !isDigits(date) {
		return time.Time{}, fmt.Errorf("%w: dEmi %q is not YYYYMMDD", ErrUnsupportedDate, date)
	}
	if len(clock) != 6 || !isDigits(clock) {
		return time.Time{}, fmt.Errorf("%w: hEmi %q is not HHMMSS", ErrUnsupportedDate, clock)
	}
	t, err := time.ParseInLocation(issuedAtLayout, date+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnsupportedDate, err)
	}
	return t, nil
}

// normalizeRecipient picks CNPJ over CPF and masks by length.
// An empty <dest/> yields nil.
func normalizeRecipient(dest *Recipient) *Recipient {
	if dest == nil {
		return nil
	}
	r := *dest
	r.TaxID = r.CNPJ
	if r.TaxID == "" {
		r.TaxID = r.CPF
	}
	if r.TaxID == "" && r.Name == "" {
		return nil
	}

	r.Identification = r.TaxID
	switch len(r.TaxID) {
	case cpfLength:
		r.TaxIDIndividual, _ = MaskIndividualTaxID(r.TaxID)
		r.Identification = r.TaxIDIndividual
	case cnpjLength:
		r.TaxIDEntity, _ = MaskEntityTaxID(r.TaxID)
		r.Identification = r.TaxIDEntity
	}
	return &r
}

// stripItemAttributes copies items without their XML attributes (nItem).
func stripItemAttributes(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Attributes = nil
		out[i] = it
	}
	return out
}

// clone returns a shallow copy of *p, or nil.
func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
