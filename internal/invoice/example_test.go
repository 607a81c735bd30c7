package invoice_test

import (
	"fmt"
	"time"

	"invoicer/internal/invoice"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// ExampleCalculateItem demonstrates pricing a single line item.
func ExampleCalculateItem() {
	b := invoice.CalculateItem(2, 50, 10, 20)

	fmt.Printf("base=%s discount=%s afterDiscount=%s tax=%s amount=%s\n",
		money.Fixed(b.Base), money.Fixed(b.Discount), money.Fixed(b.AfterDiscount),
		money.Fixed(b.Tax), money.Fixed(b.Amount))
	// Output: base=100.00 discount=20.00 afterDiscount=80.00 tax=8.00 amount=88.00
}

// ExampleSession demonstrates editing an invoice through an explicit session.
func ExampleSession() {
	s := invoice.NewSession(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	item := s.Document().Items[0].ID

	err := s.Apply(
		invoice.WithField("invoiceNumber", "INV-2026-014"),
		invoice.WithItemField(item, "description", "Logo design"),
		invoice.WithItemField(item, "quantity", "2"),
		invoice.WithItemField(item, "rate", "50"),
		invoice.WithItemField(item, "taxRate", "10"),
		invoice.WithItemField(item, "discountRate", "20"),
		invoice.WithField("discountRate", "10"),
		invoice.WithField("taxRate", "5"),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	doc := s.Document()
	fmt.Println(doc.InvoiceNumber, doc.InvoiceDate)
	fmt.Println("subtotal:", money.Format(doc.Subtotal.Float(), doc.Currency))
	fmt.Println("discount:", money.Format(doc.DiscountAmount.Float(), doc.Currency))
	fmt.Println("tax:     ", money.Format(doc.TaxAmount.Float(), doc.Currency))
	fmt.Println("total:   ", money.Format(doc.Total.Float(), doc.Currency))
	// Output:
	// INV-2026-014 2026-05-01
	// subtotal: $88.00
	// discount: $8.80
	// tax:      $3.96
	// total:    $83.16
}

// ExampleValidate demonstrates checking a document before rendering.
func ExampleValidate() {
	doc := invoice.Recalculate(models.Invoice{
		InvoiceNumber: "INV-7",
		BusinessName:  "Northwind Studio",
		Items:         []models.LineItem{{ID: "1", Quantity: 1, Rate: 40}},
	})

	for _, verr := range invoice.Validate(doc) {
		fmt.Println(verr.Field+":", verr.Message)
	}
	// Output: clientName: client name is required
}
