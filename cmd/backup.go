package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"invoicer/internal/codec"
	"invoicer/internal/logger"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of every stored invoice",
		Long: `Write every stored invoice and the business profile to one JSON backup.

Values are written with full precision so that importing the backup restores
the store exactly. When --output names a directory the file is called
invoices-backup-<unix-ms>.json.`,
		Example: `  invoicer export > backup.json
  invoicer export -o ~/backups/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("export")
			outputPath, _ := cmd.Flags().GetString("output")

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
				outputPath = filepath.Join(outputPath, codec.FileName(a.clock))
			}

			c := a.codec(st)
			return writeOutput(cmd, outputPath, log, func(w io.Writer) error {
				return c.Export(ctx, w)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup, or load a single invoice",
		Long: `Read a JSON file ("-" reads stdin).

A backup (an object with an "invoices" array) REPLACES every stored invoice
by default. Invoices that only exist locally are lost. Use --merge to keep
them and only add or update the backup's invoices by id.

A file holding a single invoice is recalculated and printed; the store is not
changed. Save it with "invoicer save" when ready.

A file that cannot be read as either leaves the store untouched.`,
		Example: `  # Restore a backup, discarding local invoices
  invoicer import invoices-backup-1767225600000.json

  # Add a colleague's invoices to yours
  invoicer import their-backup.json --merge`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merge, _ := cmd.Flags().GetBool("merge")
			mode := codec.ModeReplace
			if merge {
				mode = codec.ModeMerge
			}
			log := logger.WithFields(map[string]interface{}{
				"component": "import",
				"mode":      mode.String(),
			})

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

			result, err := a.codec(st).Import(ctx, r, mode)
			if err != nil {
				log.Error().Err(err).Str("file", args[0]).Msg("Import failed")
				return err
			}

			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			if result.Shape == codec.ShapeDocument {
				fmt.Fprintln(cmd.ErrOrStderr(), "Loaded a single invoice; the store was not changed.")
				return encodeJSON(cmd.OutOrStdout(), result.Document)
			}

			if mode == codec.ModeReplace {
				fmt.Fprintf(cmd.OutOrStdout(), "Replaced the store with %d invoices\n", result.Imported)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Merged %d invoices into the store\n", result.Imported)
			}
			if result.BusinessInfoRestored {
				fmt.Fprintln(cmd.OutOrStdout(), "Restored business info")
			}
			return nil
		},
	}
	cmd.Flags().Bool("merge", false, "Keep stored invoices and upsert the backup's by id")
	return cmd
}
