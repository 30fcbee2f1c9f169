package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-hash every cached remote module of the lock map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.Verify(cmd.Context(), c.overrides)
			if report != nil {
				newPrinter(cmd.OutOrStdout()).verify(report)
			}
			return err
		},
	}
}
