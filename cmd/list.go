package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored invoices, newest first",
		Long: `List every stored invoice, most recently created first.

--search keeps only invoices whose invoice number, client name or business
name contains the term, ignoring case.`,
		Example: `  invoicer list
  invoicer list --search acme
  invoicer list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("list")
			term, _ := cmd.Flags().GetString("search")
			asJSON, _ := cmd.Flags().GetBool("json")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			docs, err := st.Search(ctx, term)
			if err != nil {
				return handleStoreError(err, log)
			}
			log.Debug().
				Str("search", term).
				Int("results", len(docs)).
				Msg("Invoices listed")

			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), docs)
			}
			return printInvoiceTable(cmd.OutOrStdout(), docs)
		},
	}
	cmd.Flags().StringP("search", "s", "", "Only list invoices matching this term")
	cmd.Flags().Bool("json", false, "Print the invoices as JSON")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored invoice as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("show")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			doc, found, err := st.Get(ctx, models.ID(args[0]))
			if err != nil {
				return handleStoreError(err, log)
			}
			if !found {
				return fmt.Errorf("invoice %s not found", args[0])
			}
			return encodeJSON(cmd.OutOrStdout(), doc)
		},
	}
	return cmd
}

func printInvoiceTable(w io.Writer, docs []models.Invoice) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No invoices found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tCLIENT\tDATE\tTOTAL\tCREATED")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			doc.ID,
			doc.InvoiceNumber,
			doc.ClientName,
			doc.InvoiceDate,
			money.Format(doc.Total.Float(), doc.Currency),
			doc.CreatedAt.Local().Format(time.DateTime),
		)
	}
	return tw.Flush()
}
