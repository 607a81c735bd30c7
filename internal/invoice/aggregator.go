package invoice

import (
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Totals are the document-level derived values.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	AfterDiscount  float64
	TaxAmount      float64
	Total          float64
}

// Aggregate applies the document-level discount and tax to the sum of the
// already-adjusted item amounts. Item-level and document-level rates are two
// separate layers and must not be folded into one effective rate.
func Aggregate(items []models.LineItem, taxRate, discountRate float64) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += item.Amount.Float()
	}
	t.Subtotal = money.Sanitize(t.Subtotal)
	t.DiscountAmount = money.PercentOf(t.Subtotal, money.Sanitize(discountRate))
	t.AfterDiscount = t.Subtotal - t.DiscountAmount
	t.TaxAmount = money.PercentOf(t.AfterDiscount, money.Sanitize(taxRate))
	t.Total = money.Sanitize(t.AfterDiscount + t.TaxAmount)
	return t
}

// Recalculate returns a copy of doc with every item amount and every
// document total recomputed. doc itself is not modified.
func Recalculate(doc models.Invoice) models.Invoice {
	out := doc.Clone()
	for i := range out.Items {
		out.Items[i] = PriceItem(out.Items[i])
	}
	return applyTotals(out)
}

// applyTotals recomputes the document totals from the current item amounts
// without repricing the items.
func applyTotals(doc models.Invoice) models.Invoice {
	t := Aggregate(doc.Items, doc.TaxRate.Float(), doc.DiscountRate.Float())
	doc.Subtotal = models.Number(t.Subtotal)
	doc.DiscountAmount = models.Number(t.DiscountAmount)
	doc.TaxAmount = models.Number(t.TaxAmount)
	doc.Total = models.Number(t.Total)
	return doc
}
