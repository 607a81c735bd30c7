package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/render"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <id|file>",
		Short: "Produce the payload a renderer turns into a printable invoice",
		Long: `Check that an invoice is complete (invoice number, business name, client
name, at least one item and a positive total), recalculate it and write the
renderer payload as JSON: the template, the invoice and its display strings.`,
		Example: `  invoicer render 01J9Z3K4W8X2 -o invoice-request.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("render")
			outputPath, _ := cmd.Flags().GetString("output")

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

			req, err := render.Prepare(doc)
			if err != nil {
				log.Warn().
					Err(err).
					Str("invoice_id", doc.ID.String()).
					Msg("Invoice is not ready to render")
				return err
			}

			log.Info().
				Str("invoice_id", doc.ID.String()).
				Str("template", string(req.Template)).
				Msg("Render request prepared")
			return writeOutput(cmd, outputPath, log, func(w io.Writer) error {
				return render.Encode(w, req)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	return cmd
}
