package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
)

func newSaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save an invoice file to the store",
		Long: `Save the single invoice held in a JSON file ("-" reads stdin).

An invoice whose id matches a stored one replaces it completely and keeps its
creation time. Any other invoice is stored as new and given a fresh id. The
saved invoice, with its id, is printed as JSON.`,
		Example: `  invoicer save draft.json
  invoicer new --set invoiceNumber=INV-9 | invoicer save -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("save")
			outputPath, _ := cmd.Flags().GetString("output")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			doc, _, err := a.codec(st).ReadDocument(r)
			if err != nil {
				return err
			}

			saved, err := st.Save(ctx, doc)
			if err != nil {
				return handleStoreError(err, log)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved invoice %s\n", saved.ID)

			return writeOutput(cmd, outputPath, log, func(w io.Writer) error {
				return encodeJSON(w, saved)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	return cmd
}
