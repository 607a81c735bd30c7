package invoice

import (
	"strings"

	"github.com/google/uuid"

	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Edit is one discrete user action on a document. It returns the edited
// document and never modifies its argument.
type Edit func(models.Invoice) (models.Invoice, error)

// NewItemID returns a fresh line item identifier.
func NewItemID() models.ID {
	return models.ID(uuid.NewString())
}

// SetField sets a document-level field from user text. Editing taxRate or
// discountRate recomputes the document totals; text fields never do.
func SetField(doc models.Invoice, field, value string) (models.Invoice, error) {
	out := doc.Clone()
	switch field {
	case "invoiceNumber":
		out.InvoiceNumber = value
	case "invoiceDate":
		out.InvoiceDate = value
	case "dueDate":
		out.DueDate = value
	case "businessName":
		out.BusinessName = value
	case "businessEmail":
		out.BusinessEmail = value
	case "businessPhone":
		out.BusinessPhone = value
	case "businessAddress":
		out.BusinessAddress = value
	case "clientName":
		out.ClientName = value
	case "clientEmail":
		out.ClientEmail = value
	case "clientPhone":
		out.ClientPhone = value
	case "clientAddress":
		out.ClientAddress = value
	case "currency":
		out.Currency = models.Currency(strings.ToUpper(strings.TrimSpace(value)))
	case "notes":
		out.Notes = value
	case "paymentTerms":
		out.PaymentTerms = value
	case "selectedTemplate":
		out.SelectedTemplate = models.Template(strings.ToLower(strings.TrimSpace(value)))
	case "taxRate":
		out.TaxRate = models.Number(money.Coerce(value))
		return applyTotals(out), nil
	case "discountRate":
		out.DiscountRate = models.Number(money.Coerce(value))
		return applyTotals(out), nil
	case "subtotal", "discountAmount", "taxAmount", "total":
		return doc, newEditError("SetField", field, "", ErrDerivedField)
	default:
		return doc, newEditError("SetField", field, "", ErrUnknownField)
	}
	return out, nil
}

// UpdateItem sets one field of one line item from user text. A numeric edit
// reprices that item only and then re-aggregates the document; sibling items
// keep their amounts. Editing the description reprices nothing.
func UpdateItem(doc models.Invoice, id models.ID, field, value string) (models.Invoice, error) {
	idx := indexOfItem(doc.Items, id)
	if idx < 0 {
		return doc, newEditError("UpdateItem", field, id.String(), ErrItemNotFound)
	}

	out := doc.Clone()
	item := out.Items[idx]
	switch field {
	case "description":
		item.Description = value
		out.Items[idx] = item
		return out, nil
	case "quantity":
		item.Quantity = models.Number(money.Coerce(value))
	case "rate":
		item.Rate = models.Number(money.Coerce(value))
	case "taxRate":
		item.TaxRate = models.Number(money.Coerce(value))
	case "discountRate":
		item.DiscountRate = models.Number(money.Coerce(value))
	case "amount":
		return doc, newEditError("UpdateItem", field, id.String(), ErrDerivedField)
	default:
		return doc, newEditError("UpdateItem", field, id.String(), ErrUnknownField)
	}
	out.Items[idx] = PriceItem(item)
	return applyTotals(out), nil
}

// AppendItem adds item to the end of the document, assigning an id when it
// has none, and recomputes the whole document.
func AppendItem(doc models.Invoice, item models.LineItem) (models.Invoice, models.LineItem) {
	if item.ID == "" {
		item.ID = NewItemID()
	}
	item = PriceItem(item)
	out := doc.Clone()
	out.Items = append(out.Items, item)
	return applyTotals(out), item
}

// AddItem appends a blank line item with a quantity of one.
func AddItem(doc models.Invoice) (models.Invoice, models.LineItem) {
	return AppendItem(doc, models.LineItem{Quantity: 1})
}

// RemoveItem drops a line item and recomputes the whole document. Removing
// the last item leaves a document with zero totals.
func RemoveItem(doc models.Invoice, id models.ID) (models.Invoice, error) {
	idx := indexOfItem(doc.Items, id)
	if idx < 0 {
		return doc, newEditError("RemoveItem", "items", id.String(), ErrItemNotFound)
	}
	out := doc.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	return applyTotals(out), nil
}

// WithField is the Edit form of SetField.
func WithField(field, value string) Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		return SetField(doc, field, value)
	}
}

// WithItemField is the Edit form of UpdateItem.
func WithItemField(id models.ID, field, value string) Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		return UpdateItem(doc, id, field, value)
	}
}

// WithNewItem is the Edit form of AppendItem.
func WithNewItem(item models.LineItem) Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		out, _ := AppendItem(doc, item)
		return out, nil
	}
}

// WithoutItem is the Edit form of RemoveItem.
func WithoutItem(id models.ID) Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		return RemoveItem(doc, id)
	}
}

func indexOfItem(items []models.LineItem, id models.ID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
