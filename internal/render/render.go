// Package render prepares the payload handed to an external renderer.
// Producing HTML, PDF or images is the renderer's job, not this package's.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"invoicer/internal/invoice"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Request is what a renderer receives: a recalculated document, the
// template to draw it with, and the display strings it would otherwise
// have to derive itself.
type Request struct {
	Template models.Template `json:"template"`
	Invoice  models.Invoice  `json:"invoice"`
	Display  Display         `json:"display"`
}

// Display holds values rounded to two decimals and formatted with the
// document's currency symbol.
type Display struct {
	CurrencyName   string   `json:"currencyName"`
	Items          []string `json:"items"`
	Subtotal       string   `json:"subtotal"`
	DiscountAmount string   `json:"discountAmount"`
	TaxAmount      string   `json:"taxAmount"`
	Total          string   `json:"total"`
}

// Prepare validates doc and builds the renderer payload from its
// recalculated copy. The template defaults to minimal.
func Prepare(doc models.Invoice) (*Request, error) {
	if errs := invoice.Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("render: %w", errs)
	}

	doc = invoice.Recalculate(doc)
	if doc.Currency == "" {
		doc.Currency = models.DefaultCurrency
	}

	display := Display{
		CurrencyName:   doc.Currency.Name(),
		Items:          make([]string, 0, len(doc.Items)),
		Subtotal:       money.Format(doc.Subtotal.Float(), doc.Currency),
		DiscountAmount: money.Format(doc.DiscountAmount.Float(), doc.Currency),
		TaxAmount:      money.Format(doc.TaxAmount.Float(), doc.Currency),
		Total:          money.Format(doc.Total.Float(), doc.Currency),
	}
	for _, item := range doc.Items {
		display.Items = append(display.Items, money.Format(item.Amount.Float(), doc.Currency))
	}

	return &Request{
		Template: doc.SelectedTemplate.OrDefault(),
		Invoice:  doc,
		Display:  display,
	}, nil
}

// Encode writes req to w as indented JSON.
func Encode(w io.Writer, req *Request) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("render: encode request: %w", err)
	}
	return nil
}
