// Package codec moves invoice collections in and out of the store as JSON.
//
// A backup payload looks like
//
//	{"invoices": [...], "businessInfo": "...", "exportedAt": "2026-01-31T10:00:00Z"}
//
// and carries no version tag, so Import tells a backup apart from a single
// bare invoice by the presence of the "invoices" array.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"invoicer/internal/clock"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Collection is the part of the store the codec reads and writes.
type Collection interface {
	Snapshot(ctx context.Context) ([]models.Invoice, error)
	BusinessInfo(ctx context.Context) (string, bool, error)

	// Restore writes docs, and businessInfo when it is not nil, so that
	// either both change or neither does.
	Restore(ctx context.Context, docs []models.Invoice, businessInfo *string, merge bool) error
}

// Mode selects how a backup is applied to the store.
type Mode int

const (
	// ModeReplace discards every stored invoice and keeps only the backup's.
	// Unsaved or unexported local invoices are lost.
	ModeReplace Mode = iota

	// ModeMerge upserts the backup's invoices by id and keeps the rest.
	ModeMerge
)

func (m Mode) String() string {
	if m == ModeMerge {
		return "merge"
	}
	return "replace"
}

// Shape is what Import found in a payload.
type Shape string

const (
	ShapeBackup   Shape = "backup"
	ShapeDocument Shape = "document"
)

// Result describes a completed import.
type Result struct {
	Shape Shape

	// Imported is the number of invoices written to the store.
	Imported int

	// Document is the bare invoice to load into an editing session. It is
	// only set for ShapeDocument, and the store is not touched in that case.
	Document *models.Invoice

	// BusinessInfoRestored reports whether the backup replaced the stored
	// business profile.
	BusinessInfoRestored bool

	// Warnings lists stale totals that were recomputed on the way in.
	Warnings []string
}

// Codec imports and exports backups.
type Codec struct {
	collection Collection
	clock      clock.Clock
	totals     *invoice.TotalsValidation
	log        zerolog.Logger
}

func New(collection Collection, c clock.Clock) *Codec {
	if c == nil {
		c = clock.Real()
	}
	return &Codec{
		collection: collection,
		clock:      c,
		totals:     invoice.NewTotalsValidation(0),
		log:        logger.WithComponent("codec"),
	}
}

// Backup builds the backup payload for the current collection.
func (c *Codec) Backup(ctx context.Context) (models.Backup, error) {
	docs, err := c.collection.Snapshot(ctx)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	backup := models.Backup{
		Invoices:   docs,
		ExportedAt: c.clock.Now(),
	}
	info, found, err := c.collection.BusinessInfo(ctx)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if found {
		backup.BusinessInfo = &info
	}
	return backup, nil
}

// Export writes the backup payload to w as indented JSON.
func (c *Codec) Export(ctx context.Context, w io.Writer) error {
	backup, err := c.Backup(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	c.log.Info().
		Int("invoices", len(backup.Invoices)).
		Bool("business_info", backup.BusinessInfo != nil).
		Msg("Backup exported")
	return nil
}

// FileName is the suggested name for a backup written at t.
func FileName(t clock.Clock) string {
	return fmt.Sprintf("invoices-backup-%d.json", t.Now().UnixMilli())
}

// Import reads one payload. A backup is applied to the store according to
// mode; a bare invoice is returned in Result.Document and the store is left
// alone. Payloads that do not parse, and backups the store cannot hold, leave
// the store untouched and return an *ImportError.
func (c *Codec) Import(ctx context.Context, r io.Reader, mode Mode) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Cause: "could not read payload", Err: err}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, malformed("payload is not a JSON object", err)
	}
	if probe == nil {
		return nil, malformed("payload is not a JSON object", nil)
	}

	raw, hasInvoices := probe["invoices"]
	raw = bytes.TrimSpace(raw)
	switch {
	case hasInvoices && len(raw) > 0 && raw[0] == '[':
		return c.importBackup(ctx, data, mode)
	case hasInvoices && !bytes.Equal(raw, []byte("null")):
		return nil, malformed(`"invoices" must be an array`, nil)
	default:
		return c.importDocument(data)
	}
}

func (c *Codec) importBackup(ctx context.Context, data []byte, mode Mode) (*Result, error) {
	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, malformed("backup does not match the expected format", err)
	}

	result := &Result{Shape: ShapeBackup, Warnings: []string{}}
	docs := make([]models.Invoice, 0, len(backup.Invoices))
	for _, doc := range backup.Invoices {
		check := c.totals.Verify(doc)
		result.Warnings = append(result.Warnings, check.Warnings...)
		docs = append(docs, invoice.Recalculate(doc))
	}

	var info *string
	if backup.BusinessInfo != nil && *backup.BusinessInfo != "" {
		info = backup.BusinessInfo
	}
	if err := c.collection.Restore(ctx, docs, info, mode == ModeMerge); err != nil {
		return nil, &ImportError{Cause: "could not write imported backup", Err: err}
	}
	result.Imported = len(docs)
	result.BusinessInfoRestored = info != nil

	c.log.Info().
		Str("mode", mode.String()).
		Int("invoices", result.Imported).
		Bool("business_info", result.BusinessInfoRestored).
		Int("stale_totals", len(result.Warnings)).
		Time("exported_at", backup.ExportedAt).
		Msg("Backup imported")
	return result, nil
}

// ReadDocument reads a single bare invoice for editing. It never touches
// the store; a backup payload is rejected with ErrNotADocument.
func (c *Codec) ReadDocument(r io.Reader) (models.Invoice, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Invoice{}, nil, &ImportError{Cause: "could not read payload", Err: err}
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return models.Invoice{}, nil, malformed("payload is not a JSON object", err)
	}
	if probe == nil {
		return models.Invoice{}, nil, malformed("payload is not a JSON object", nil)
	}
	if raw, ok := probe["invoices"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return models.Invoice{}, nil, &ImportError{Cause: "payload is a backup", Err: ErrNotADocument}
	}
	result, err := c.importDocument(data)
	if err != nil {
		return models.Invoice{}, nil, err
	}
	return *result.Document, result.Warnings, nil
}

func (c *Codec) importDocument(data []byte) (*Result, error) {
	var doc models.Invoice
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformed("invoice does not match the expected format", err)
	}
	check := c.totals.Verify(doc)
	doc = invoice.Recalculate(doc)

	c.log.Info().
		Str("invoice_number", doc.InvoiceNumber).
		Int("items", len(doc.Items)).
		Msg("Invoice loaded for editing")
	return &Result{Shape: ShapeDocument, Document: &doc, Warnings: check.Warnings}, nil
}
