package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	var (
		opts   app.ResolveOptions
		target string
	)

	cmd := &cobra.Command{
		Use:   "load <specifier>",
		Short: "Resolve a specifier and print its verified bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Overrides = c.overrides
			loaded, err := c.app.Load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}

			newPrinter(cmd.ErrOrStderr()).warnings(loaded.Warnings)

			if target != "" {
				if err := os.WriteFile(target, loaded.Data, domain.FilePerm); err != nil {
					return zerr.With(zerr.Wrap(err, "failed to write module"), "path", target)
				}
				return nil
			}
			_, err = cmd.OutOrStdout().Write(loaded.Data)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Importer, "importer", "", "URL or path of the importing module (default: the project root)")
	cmd.Flags().StringVarP(&target, "output", "o", "", "Write the module to this file instead of stdout")

	return cmd
}
