package cfextrato

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/alnah/go-cfextrato/internal/fileutil"
)

// MaxDocumentSize limits XML input to prevent memory exhaustion (default 4MB).
// A SAT receipt with a few hundred items stays well below 1MB.
var MaxDocumentSize int64 = 4 << 20

// Document is a parsed CFe-SAT XML document.
// Repeated elements (det, MP) are always slices, so a single item and many
// items share one shape.
type Document struct {
	XMLName xml.Name `xml:"CFe"`
	InfCFe  *InfCFe  `xml:"infCFe"`
}

// InfCFe is the root information node.
type InfCFe struct {
	ID              string          `xml:"Id,attr"` // "CFe" + 44-char key
	Version         string          `xml:"versao,attr"`
	DataVersion     string          `xml:"versaoDadosEnt,attr"`
	SoftwareVersion string          `xml:"versaoSB,attr"`
	Identification  *Identification `xml:"ide"`
	Issuer          *Issuer         `xml:"emit"`
	Recipient       *Recipient      `xml:"dest"`
	Delivery        *Delivery       `xml:"entrega"`
	Items           []Item          `xml:"det"`
	Totals          *Totals         `xml:"total"`
	Payments        *PaymentGroup   `xml:"pgto"`
	AdditionalInfo  *AdditionalInfo `xml:"infAdic"`
}

// Identification holds the ide group.
type Identification struct {
	StateCode       string `xml:"cUF"`
	NumericCode     string `xml:"cNF"`
	Model           string `xml:"mod"`
	SerialNumber    string `xml:"nserieSAT"` // 9 digits
	Number          string `xml:"nCFe"`
	EmissionDate    string `xml:"dEmi"` // YYYYMMDD
	EmissionTime    string `xml:"hEmi"` // HHMMSS
	CheckDigit      string `xml:"cDV"`
	Environment     string `xml:"tpAmb"`
	SoftwareHouseID string `xml:"CNPJ"`
	SoftwareSign    string `xml:"signAC"`
	QRCodeSignature string `xml:"assinaturaQRCODE"`
	CashRegister    string `xml:"numeroCaixa"`
}

// Issuer holds the emit group.
type Issuer struct {
	TaxID                 string  `xml:"CNPJ"` // 14 digits
	Name                  string  `xml:"xNome"`
	TradeName             string  `xml:"xFant"`
	Address               Address `xml:"enderEmit"`
	StateRegistration     string  `xml:"IE"`
	MunicipalRegistration string  `xml:"IM"`
	TaxRegime             string  `xml:"cRegTrib"`
	ISSQNRegime           string  `xml:"cRegTribISSQN"`
	ISSQNApportionment    string  `xml:"indRatISSQN"`
}

// Address holds the enderEmit group.
type Address struct {
	Street     string `xml:"xLgr"`
	Number     string `xml:"nro"`
	Complement string `xml:"xCpl"`
	District   string `xml:"xBairro"`
	City       string `xml:"xMun"`
	PostalCode string `xml:"CEP"` // 8 digits
}

// Recipient holds the dest group. CNPJ and CPF are mutually exclusive.
type Recipient struct {
	CNPJ string `xml:"CNPJ"`
	CPF  string `xml:"CPF"`
	Name string `xml:"xNome"`

	// Populated by Normalize.
	TaxID           string `xml:"-"` // raw CNPJ or CPF
	TaxIDEntity     string `xml:"-"` // masked CNPJ
	TaxIDIndividual string `xml:"-"` // masked CPF
	Identification  string `xml:"-"` // masked ID, or raw when the length fits no mask
}

// Delivery holds the entrega group.
type Delivery struct {
	Street     string `xml:"xLgr"`
	Number     string `xml:"nro"`
	Complement string `xml:"xCpl"`
	District   string `xml:"xBairro"`
	City       string `xml:"xMun"`
	State      string `xml:"UF"`
}

// Item is one det entry.
type Item struct {
	Attributes     []xml.Attr `xml:",any,attr"`
	Product        Product    `xml:"prod"`
	Tax            ItemTax    `xml:"imposto"`
	AdditionalInfo string     `xml:"infAdProd"`
}

// Product holds the prod group of an item.
type Product struct {
	Code           string        `xml:"cProd"`
	EAN            string        `xml:"cEAN"`
	Description    string        `xml:"xProd"`
	NCM            string        `xml:"NCM"`
	CEST           string        `xml:"CEST"`
	CFOP           string        `xml:"CFOP"`
	Unit           string        `xml:"uCom"`
	Quantity       string        `xml:"qCom"`
	UnitPrice      string        `xml:"vUnCom"`
	GrossValue     string        `xml:"vProd"`
	RoundingRule   string        `xml:"indRegra"`
	Discount       string        `xml:"vDesc"`
	Other          string        `xml:"vOutro"`
	NetValue       string        `xml:"vItem"`
	ProratedDisc   string        `xml:"vRatDesc"`
	ProratedSurch  string        `xml:"vRatAcr"`
	FiscalComments []FiscalField `xml:"obsFiscoDet"`
}

// FiscalField is a name/value pair reserved for the tax authority.
type FiscalField struct {
	Field string `xml:"xCampoDet,attr"`
	Text  string `xml:"xTextoDet"`
}

// ItemTax holds the parts of imposto shown on the receipt.
type ItemTax struct {
	ApproximateTaxes string `xml:"vItem12741"` // Lei 12.741/2012
}

// Totals holds the total group.
type Totals struct {
	ICMS             ICMSTotals       `xml:"ICMSTot"`
	Value            string           `xml:"vCFe"`
	Adjustments      *SubtotalAdjusts `xml:"DescAcrEntr"`
	ApproximateTaxes string           `xml:"vCFeLei12741"`
}

// ICMSTotals holds the ICMSTot group.
type ICMSTotals struct {
	ICMS     string `xml:"vICMS"`
	Products string `xml:"vProd"`
	Discount string `xml:"vDesc"`
	PIS      string `xml:"vPIS"`
	COFINS   string `xml:"vCOFINS"`
	PISST    string `xml:"vPISST"`
	COFINSST string `xml:"vCOFINSST"`
	Other    string `xml:"vOutro"`
}

// SubtotalAdjusts holds discounts and surcharges applied over the subtotal.
type SubtotalAdjusts struct {
	Discount  string `xml:"vDescSubtot"`
	Surcharge string `xml:"vAcresSubtot"`
}

// PaymentGroup holds the pgto group.
type PaymentGroup struct {
	Methods   []Payment `xml:"MP"`
	ChangeDue string    `xml:"vTroco"`
}

// Payment is one MP entry.
type Payment struct {
	Attributes []xml.Attr `xml:",any,attr"`
	Method     string     `xml:"cMP"`
	Value      string     `xml:"vMP"`
	CardIssuer string     `xml:"cAdmC"`
}

// AdditionalInfo holds the infAdic group.
type AdditionalInfo struct {
	Taxpayer string       `xml:"infCpl"`
	Fiscal   []FiscalNote `xml:"obsFisco"`
}

// FiscalNote is an obsFisco entry.
type FiscalNote struct {
	Field string `xml:"xCampo,attr"`
	Text  string `xml:"xTexto"`
}

// Parse decodes CFe XML. Non-UTF-8 encodings declared in the XML header are
// converted on the fly.
func Parse(data []byte) (*Document, error) {
	return decode(bytes.NewReader(data))
}

// LoadDocument parses a document from a file path or from XML content.
// source is read as a file when such a file exists, otherwise it is parsed
// as XML content.
func LoadDocument(source string) (*Document, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}
	if !fileutil.FileExists(source) {
		return decode(strings.NewReader(source))
	}

	f, err := os.Open(source) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(io.LimitReader(r, MaxDocumentSize))
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}
