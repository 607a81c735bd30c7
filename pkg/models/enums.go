package models

// Currency is a display label only; amounts are never converted.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

// DefaultCurrency is used for new invoices.
const DefaultCurrency = CurrencyUSD

type currencyInfo struct {
	symbol string
	name   string
}

var currencies = map[Currency]currencyInfo{
	CurrencyUSD: {symbol: "$", name: "US Dollar"},
	CurrencyEUR: {symbol: "€", name: "Euro"},
	CurrencyGBP: {symbol: "£", name: "British Pound"},
	CurrencyINR: {symbol: "₹", name: "Indian Rupee"},
	CurrencyCAD: {symbol: "C$", name: "Canadian Dollar"},
	CurrencyAUD: {symbol: "A$", name: "Australian Dollar"},
}

// Currencies lists the supported codes in display order.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyINR, CurrencyCAD, CurrencyAUD}
}

func (c Currency) IsValid() bool {
	_, ok := currencies[c]
	return ok
}

// Symbol returns the display symbol, or an empty string for unknown codes.
func (c Currency) Symbol() string {
	return currencies[c].symbol
}

func (c Currency) Name() string {
	return currencies[c].name
}

// Template names a rendering style. It is opaque to the engine.
type Template string

const (
	TemplateMinimal   Template = "minimal"
	TemplateCorporate Template = "corporate"
	TemplateModern    Template = "modern"
)

// DefaultTemplate is used when a document has no template selected.
const DefaultTemplate = TemplateMinimal

func Templates() []Template {
	return []Template{TemplateMinimal, TemplateCorporate, TemplateModern}
}

func (t Template) IsValid() bool {
	switch t {
	case TemplateMinimal, TemplateCorporate, TemplateModern:
		return true
	}
	return false
}

// OrDefault returns t, or DefaultTemplate when t is empty.
func (t Template) OrDefault() Template {
	if t == "" {
		return DefaultTemplate
	}
	return t
}
