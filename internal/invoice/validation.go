package invoice

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// DefaultTolerance is the largest difference between a stored derived value
// and its recomputed value that is still treated as consistent.
const DefaultTolerance = 1e-6

// Validate checks the preconditions a document must meet before it is handed
// to the renderer. Totals are checked on the recalculated document.
func Validate(doc models.Invoice) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(doc.InvoiceNumber) == "" {
		errs = append(errs, NewValidationError("invoiceNumber", doc.InvoiceNumber, "invoice number is required"))
	}
	if strings.TrimSpace(doc.BusinessName) == "" {
		errs = append(errs, NewValidationError("businessName", doc.BusinessName, "business name is required"))
	}
	if strings.TrimSpace(doc.ClientName) == "" {
		errs = append(errs, NewValidationError("clientName", doc.ClientName, "client name is required"))
	}
	if len(doc.Items) == 0 {
		errs = append(errs, NewValidationError("items", 0, "at least one item is required"))
	}
	if total := Recalculate(doc).Total.Float(); total <= 0 {
		errs = append(errs, NewValidationError("total", total, "total must be greater than zero"))
	}
	if doc.Currency != "" && !doc.Currency.IsValid() {
		errs = append(errs, NewValidationError("currency", doc.Currency,
			"unsupported currency, expected one of "+oneOf(models.Currencies())))
	}
	if doc.SelectedTemplate != "" && !doc.SelectedTemplate.IsValid() {
		errs = append(errs, NewValidationError("selectedTemplate", doc.SelectedTemplate,
			"unknown template, expected one of "+oneOf(models.Templates())))
	}
	for _, f := range []struct{ name, value string }{
		{"invoiceDate", doc.InvoiceDate},
		{"dueDate", doc.DueDate},
	} {
		if f.value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, f.value); err != nil {
			errs = append(errs, NewValidationError(f.name, f.value, "date must be YYYY-MM-DD"))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func oneOf[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// TotalsValidation compares the derived values stored in a document with
// the values the calculator produces.
type TotalsValidation struct {
	log       zerolog.Logger
	tolerance float64
}

// NewTotalsValidation creates a totals checker. A non-positive tolerance
// selects DefaultTolerance.
func NewTotalsValidation(tolerance float64) *TotalsValidation {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &TotalsValidation{
		log:       logger.WithComponent("totals-validation"),
		tolerance: tolerance,
	}
}

// TotalsValidationResult lists every stale derived value found.
type TotalsValidationResult struct {
	Warnings       []string
	HasDiscrepancy bool
	MaxDiscrepancy float64 // absolute
}

// Verify recomputes doc and reports each stored derived value that differs
// from the recomputed one by more than the tolerance.
func (tv *TotalsValidation) Verify(doc models.Invoice) *TotalsValidationResult {
	result := &TotalsValidationResult{Warnings: []string{}}
	fresh := Recalculate(doc)

	for i := range doc.Items {
		tv.compare(result, fmt.Sprintf("items[%d].amount", i), doc.Items[i].Amount.Float(), fresh.Items[i].Amount.Float())
	}
	tv.compare(result, "subtotal", doc.Subtotal.Float(), fresh.Subtotal.Float())
	tv.compare(result, "discountAmount", doc.DiscountAmount.Float(), fresh.DiscountAmount.Float())
	tv.compare(result, "taxAmount", doc.TaxAmount.Float(), fresh.TaxAmount.Float())
	tv.compare(result, "total", doc.Total.Float(), fresh.Total.Float())

	if result.HasDiscrepancy {
		tv.log.Warn().
			Str("invoice_id", doc.ID.String()).
			Str("invoice_number", doc.InvoiceNumber).
			Float64("max_discrepancy", result.MaxDiscrepancy).
			Strs("warnings", result.Warnings).
			Msg("Stored totals differ from recomputed totals")
	}
	return result
}

func (tv *TotalsValidation) compare(result *TotalsValidationResult, field string, stored, computed float64) {
	diff := math.Abs(stored - computed)
	if diff <= tv.tolerance {
		return
	}
	result.HasDiscrepancy = true
	if diff > result.MaxDiscrepancy {
		result.MaxDiscrepancy = diff
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("%s is stale: stored=%.2f, computed=%.2f", field, stored, computed))
}
