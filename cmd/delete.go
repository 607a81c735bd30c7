package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored invoice",
		Long: `Delete the invoice with the given id. Deleting an id that is not stored
does nothing. There is no undo; export a backup first if in doubt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("delete")
			id := models.ID(args[0])

			ctx, cancel := commandContext(cmd, log)
			defer cancel()

			st, err := a.openStore(ctx, log)
			if err != nil {
				return err
			}
			defer closeStore(st, log)

			_, found, err := st.Get(ctx, id)
			if err != nil {
				return handleStoreError(err, log)
			}
			if !found {
				fmt.Fprintf(cmd.ErrOrStderr(), "No invoice %s, nothing deleted\n", id)
				return nil
			}
			if err := st.Delete(ctx, id); err != nil {
				return handleStoreError(err, log)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Deleted invoice %s\n", id)
			return nil
		},
	}
	return cmd
}
