package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache-path <url>",
		Short: "Print the cache file of a remote or npm module URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.app.CachePath(c.overrides, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
