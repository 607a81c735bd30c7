package cmd

import (
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/store"
)

func newNewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new invoice",
		Long: `Start a new invoice with one blank line item, today's date, USD and the
minimal template, apply any edits given as flags and print the result as JSON.

Nothing is written to the store unless --save is given.`,
		Example: `  # Print a blank invoice
  invoicer new

  # Fill in the essentials and save it
  invoicer new --set invoiceNumber=INV-001 --set clientName="Acme Ltd" \
    --item 1.description="Design work" --item 1.quantity=2 --item 1.rate=50 --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("new")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			edits, err := collectEdits(cmd)
			if err != nil {
				return err
			}

			s := invoice.NewSession(a.clock.Now())
			if err := s.Apply(edits...); err != nil {
				log.Error().Err(err).Msg("Failed to apply edits")
				return err
			}

			// The store is only needed when the new invoice is saved.
			var st *store.Store
			if save, _ := cmd.Flags().GetBool("save"); save {
				if st, err = a.openStore(ctx, log); err != nil {
					return err
				}
				defer closeStore(st, log)
			}

			return finishEdit(ctx, cmd, st, s, log)
		},
	}
	editFlags(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id|file>",
		Short: "Edit a stored invoice or an invoice file",
		Long: `Load an invoice from the store by id, or from a JSON file holding a single
invoice ("-" reads stdin), apply the edits given as flags and print the result.

Removals run first, then --add-item, then --set and --item. Every numeric
edit recomputes the totals. Edits are all-or-nothing: if one fails, none are
applied. Nothing is written to the store unless --save is given.

Document fields: invoiceNumber, invoiceDate, dueDate, businessName,
businessEmail, businessPhone, businessAddress, clientName, clientEmail,
clientPhone, clientAddress, currency, notes, paymentTerms, selectedTemplate,
taxRate, discountRate.

Item fields: description, quantity, rate, taxRate, discountRate.`,
		Example: `  # Apply a 10% document discount and save
  invoicer edit 01J9Z3K4W8X2 --set discountRate=10 --save

  # Add an item to a draft file and write it back
  invoicer edit draft.json --add-item 1 --item 2.description=Hosting --item 2.rate=12 -o draft.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("edit")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			edits, err := collectEdits(cmd)
			if err != nil {
				return err
			}

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			doc, err := loadDocument(ctx, cmd, st, a.codec(st), args[0], log)
			if err != nil {
				return err
			}

			s := invoice.Open(doc)
			if err := s.Apply(edits...); err != nil {
				log.Error().
					Err(err).
					Str("invoice_id", doc.ID.String()).
					Msg("Failed to apply edits")
				return err
			}
			log.Info().
				Str("invoice_id", doc.ID.String()).
				Int("edits", len(edits)).
				Msg("Invoice edited")

			return finishEdit(ctx, cmd, st, s, log)
		},
	}
	editFlags(cmd)
	return cmd
}
