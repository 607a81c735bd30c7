package models

import "time"

// LineItem is one billable row on an invoice. Amount is derived from the other
// numeric fields and is never edited directly.
type LineItem struct {
	ID           ID     `json:"id"`
	Description  string `json:"description"`
	Quantity     Number `json:"quantity"`
	Rate         Number `json:"rate"`
	TaxRate      Number `json:"taxRate"`
	DiscountRate Number `json:"discountRate"`
	Amount       Number `json:"amount"`
}

type Invoice struct {
	// Identity (assigned by the store)
	ID        ID         `json:"id,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	// Invoice details
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceDate   string `json:"invoiceDate"` // YYYY-MM-DD
	DueDate       string `json:"dueDate"`     // YYYY-MM-DD

	// Business information
	BusinessName    string `json:"businessName"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessPhone   string `json:"businessPhone"`
	BusinessAddress string `json:"businessAddress"`

	// Client information
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	ClientAddress string `json:"clientAddress"`

	Items []LineItem `json:"items"`

	// Document-level rates and derived totals
	Subtotal       Number `json:"subtotal"`
	DiscountRate   Number `json:"discountRate"`
	DiscountAmount Number `json:"discountAmount"`
	TaxRate        Number `json:"taxRate"`
	TaxAmount      Number `json:"taxAmount"`
	Total          Number `json:"total"`

	Currency         Currency `json:"currency"`
	Notes            string   `json:"notes"`
	PaymentTerms     string   `json:"paymentTerms"`
	SelectedTemplate Template `json:"selectedTemplate"`
}

// IsPersisted reports whether the store has assigned an identity.
func (inv Invoice) IsPersisted() bool {
	return inv.ID != ""
}

// Clone returns a copy that shares no mutable state with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	if inv.UpdatedAt != nil {
		t := *inv.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// Backup is the portable export format containing the whole collection.
type Backup struct {
	Invoices     []Invoice `json:"invoices"`
	BusinessInfo *string   `json:"businessInfo,omitempty"`
	ExportedAt   time.Time `json:"exportedAt"`
}
