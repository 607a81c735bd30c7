package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/codec"
	"invoicer/internal/invoice"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// editFlags registers the flags shared by new and edit.
func editFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "Set a document field, e.g. --set clientName=\"Acme Ltd\" (repeatable)")
	cmd.Flags().StringArray("item", nil, "Set an item field as <item>.<field>=<value>; <item> is a 1-based position or an item id (repeatable)")
	cmd.Flags().Int("add-item", 0, "Append this many blank line items")
	cmd.Flags().StringArray("remove-item", nil, "Remove a line item by 1-based position or id (repeatable)")
	cmd.Flags().Bool("save", false, "Save the result to the store")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

// collectEdits turns the edit flags into session edits. Removals run first,
// then additions, then field updates, so positions in --item refer to the
// document after items were added and removed.
func collectEdits(cmd *cobra.Command) ([]invoice.Edit, error) {
	sets, _ := cmd.Flags().GetStringArray("set")
	items, _ := cmd.Flags().GetStringArray("item")
	adds, _ := cmd.Flags().GetInt("add-item")
	removals, _ := cmd.Flags().GetStringArray("remove-item")

	var edits []invoice.Edit
	for _, ref := range removals {
		edits = append(edits, removeItemEdit(ref))
	}
	for i := 0; i < adds; i++ {
		edits = append(edits, invoice.WithNewItem(models.LineItem{Quantity: 1}))
	}
	for _, s := range sets {
		field, value, err := splitAssignment(s)
		if err != nil {
			return nil, err
		}
		edits = append(edits, invoice.WithField(field, value))
	}
	for _, s := range items {
		target, value, err := splitAssignment(s)
		if err != nil {
			return nil, err
		}
		ref, field, ok := strings.Cut(target, ".")
		if !ok || ref == "" || field == "" {
			return nil, fmt.Errorf("invalid --item %q: expected <item>.<field>=<value>", s)
		}
		edits = append(edits, itemFieldEdit(ref, field, value))
	}
	return edits, nil
}

func splitAssignment(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q: expected key=value", s)
	}
	return key, value, nil
}

// resolveItem maps a 1-based position or an item id to the item's id.
func resolveItem(doc models.Invoice, ref string) (models.ID, error) {
	for _, item := range doc.Items {
		if item.ID.String() == ref {
			return item.ID, nil
		}
	}
	if pos, err := strconv.Atoi(ref); err == nil && pos >= 1 && pos <= len(doc.Items) {
		return doc.Items[pos-1].ID, nil
	}
	return "", fmt.Errorf("line item %q: %w", ref, invoice.ErrItemNotFound)
}

func itemFieldEdit(ref, field, value string) invoice.Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		id, err := resolveItem(doc, ref)
		if err != nil {
			return doc, err
		}
		return invoice.UpdateItem(doc, id, field, value)
	}
}

func removeItemEdit(ref string) invoice.Edit {
	return func(doc models.Invoice) (models.Invoice, error) {
		id, err := resolveItem(doc, ref)
		if err != nil {
			return doc, err
		}
		return invoice.RemoveItem(doc, id)
	}
}

// loadDocument returns the stored invoice with id ref, or else reads ref as
// a file holding a single invoice ("-" reads stdin).
func loadDocument(ctx context.Context, cmd *cobra.Command, st *store.Store, c *codec.Codec, ref string, log zerolog.Logger) (models.Invoice, error) {
	if ref != "-" {
		doc, found, err := st.Get(ctx, models.ID(ref))
		if err != nil {
			return models.Invoice{}, fmt.Errorf("failed to read store: %w", err)
		}
		if found {
			log.Debug().Str("invoice_id", ref).Msg("Loaded invoice from store")
			return doc, nil
		}
	}

	r, closeFn, err := openInput(cmd, ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Invoice{}, fmt.Errorf("no stored invoice or file named %q", ref)
		}
		return models.Invoice{}, err
	}
	defer closeFn()

	doc, warnings, err := c.ReadDocument(r)
	if err != nil {
		if errors.Is(err, codec.ErrNotADocument) {
			return models.Invoice{}, fmt.Errorf("%s holds a backup, use \"invoicer import\" instead", ref)
		}
		return models.Invoice{}, err
	}
	for _, w := range warnings {
		log.Warn().Str("file", ref).Msg(w)
	}
	return doc, nil
}

// openInput opens path for reading; "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// writeOutput writes through fn to outputPath, or to the command's stdout
// when outputPath is empty.
func writeOutput(cmd *cobra.Command, outputPath string, log zerolog.Logger, fn func(io.Writer) error) error {
	if outputPath == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("output_path", outputPath).
			Msg("Failed to create output file")
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_path", outputPath).
		Msg("Output written to file")
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// finishEdit prints the edited document, saving it first when --save is set.
func finishEdit(ctx context.Context, cmd *cobra.Command, st *store.Store, s *invoice.Session, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if save {
		saved, err := st.Save(ctx, s.Document())
		if err != nil {
			return handleStoreError(err, log)
		}
		s.Adopt(saved)
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved invoice %s\n", saved.ID)
	}

	doc := s.Document()
	if errs := invoice.Validate(doc); len(errs) > 0 {
		log.Info().
			Int("problems", len(errs)).
			Str("first", errs[0].Error()).
			Msg("Invoice is not ready to render yet")
	}
	return writeOutput(cmd, outputPath, log, func(w io.Writer) error {
		return encodeJSON(w, doc)
	})
}

// handleStoreError provides user-friendly messages for store failures.
func handleStoreError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Store operation failed")

	switch {
	case errors.Is(err, store.ErrCapacityExceeded):
		return fmt.Errorf("the store is full. Export a backup and delete old invoices, or raise STORE_CAPACITY_BYTES: %w", err)
	case errors.Is(err, store.ErrCorruptCollection):
		return fmt.Errorf("the stored invoice collection could not be read. Restore it from a backup: %w", err)
	case errors.Is(err, store.ErrDuplicateID):
		return fmt.Errorf("two invoices share the same id: %w", err)
	case errors.Is(err, store.ErrBackendUnavailable):
		return fmt.Errorf("the store is unavailable: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	default:
		return fmt.Errorf("store operation failed: %w", err)
	}
}
