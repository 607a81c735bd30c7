package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

func newCalcCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc <id|file>",
		Short: "Show how an invoice's totals are computed",
		Long: `Recalculate a stored invoice or an invoice file and print the breakdown of
every line item and of the document totals, rounded to two decimals.

Each item is priced as quantity x rate, less the item discount, plus item
tax on the discounted amount. The document discount applies to the subtotal
and the document tax to the discounted subtotal.`,
		Example: `  invoicer calc draft.json
  invoicer calc 01J9Z3K4W8X2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("calc")
			asJSON, _ := cmd.Flags().GetBool("json")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			doc, err := loadDocument(ctx, cmd, st, a.codec(st), args[0], log)
			if err != nil {
				return err
			}
			doc = invoice.Recalculate(doc)

			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), doc)
			}
			return printBreakdown(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().Bool("json", false, "Print the recalculated invoice as JSON")
	return cmd
}

func printBreakdown(w io.Writer, doc models.Invoice) error {
	cur := doc.Currency
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDESCRIPTION\tQTY\tRATE\tBASE\tDISCOUNT\tTAX\tAMOUNT\t")
	for i, item := range doc.Items {
		b := invoice.CalculateItem(item.Quantity.Float(), item.Rate.Float(), item.TaxRate.Float(), item.DiscountRate.Float())
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t-%s\t+%s\t%s\t\n",
			i+1,
			item.Description,
			money.Round(item.Quantity.Float()).String(),
			money.Format(item.Rate.Float(), cur),
			money.Format(b.Base, cur),
			money.Format(b.Discount, cur),
			money.Format(b.Tax, cur),
			money.Format(b.Amount, cur),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tot := invoice.Aggregate(doc.Items, doc.TaxRate.Float(), doc.DiscountRate.Float())
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Subtotal\t%s\t\n", money.Format(tot.Subtotal, cur))
	fmt.Fprintf(tw, "Discount (%s%%)\t-%s\t\n", money.Round(doc.DiscountRate.Float()).String(), money.Format(tot.DiscountAmount, cur))
	fmt.Fprintf(tw, "Tax (%s%%)\t+%s\t\n", money.Round(doc.TaxRate.Float()).String(), money.Format(tot.TaxAmount, cur))
	fmt.Fprintf(tw, "Total\t%s\t\n", money.Format(tot.Total, cur))
	return tw.Flush()
}
