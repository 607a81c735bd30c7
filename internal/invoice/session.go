package invoice

import (
	"time"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// DateLayout is the calendar date form used for invoiceDate and dueDate.
const DateLayout = "2006-01-02"

// Session owns the single in-flight document being edited. Every edit
// produces a new document value; the previous one is kept for Undo.
// A Session is not safe for concurrent use.
type Session struct {
	doc     models.Invoice
	history []models.Invoice
	log     zerolog.Logger
}

// Blank returns the starting document for a new invoice: one empty line
// item, the default currency and template, and today's invoice date.
func Blank(now time.Time) models.Invoice {
	doc := models.Invoice{
		InvoiceDate:      now.Format(DateLayout),
		Currency:         models.DefaultCurrency,
		SelectedTemplate: models.DefaultTemplate,
	}
	doc, _ = AddItem(doc)
	return doc
}

// NewSession starts editing a blank invoice.
func NewSession(now time.Time) *Session {
	return Open(Blank(now))
}

// Open starts editing an existing document. The document is recalculated so
// the session never holds stale totals.
func Open(doc models.Invoice) *Session {
	return &Session{
		doc: Recalculate(doc),
		log: logger.WithComponent("session"),
	}
}

// Document returns a copy of the current document.
func (s *Session) Document() models.Invoice {
	return s.doc.Clone()
}

// Apply runs edits in order. If any edit fails the session is left exactly
// as it was before the call.
func (s *Session) Apply(edits ...Edit) error {
	next := s.doc
	for _, edit := range edits {
		var err error
		next, err = edit(next)
		if err != nil {
			return err
		}
	}
	s.history = append(s.history, s.doc)
	s.doc = next

	s.log.Debug().
		Int("edits", len(edits)).
		Int("items", len(next.Items)).
		Float64("subtotal", next.Subtotal.Float()).
		Float64("total", next.Total.Float()).
		Msg("Session recalculated")
	return nil
}

// Undo restores the document as it was before the last successful Apply.
func (s *Session) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	last := len(s.history) - 1
	s.doc = s.history[last]
	s.history = s.history[:last]
	return nil
}

// Adopt replaces the session document with the one the store returned after
// saving, so later saves update rather than create.
func (s *Session) Adopt(saved models.Invoice) {
	s.doc = saved.Clone()
	s.history = nil
}
