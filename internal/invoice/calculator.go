package invoice

import (
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Breakdown is the intermediate result of pricing one line item.
type Breakdown struct {
	Base          float64
	Discount      float64
	AfterDiscount float64
	Tax           float64
	Amount        float64
}

// CalculateItem prices a line item. The discount is taken off the gross base
// first and tax is charged on what remains; the order matters whenever both
// rates are non-zero.
func CalculateItem(quantity, rate, taxRate, discountRate float64) Breakdown {
	var b Breakdown
	b.Base = money.Sanitize(quantity * rate)
	b.Discount = money.PercentOf(b.Base, money.Sanitize(discountRate))
	b.AfterDiscount = b.Base - b.Discount
	b.Tax = money.PercentOf(b.AfterDiscount, money.Sanitize(taxRate))
	b.Amount = money.Sanitize(b.AfterDiscount + b.Tax)
	return b
}

// PriceItem returns item with Amount recomputed from its inputs.
func PriceItem(item models.LineItem) models.LineItem {
	b := CalculateItem(item.Quantity.Float(), item.Rate.Float(), item.TaxRate.Float(), item.DiscountRate.Float())
	item.Amount = models.Number(b.Amount)
	return item
}
