package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/core/domain"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	var (
		opts   app.ResolveOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [specifiers...]",
		Short: "Resolve specifiers to module URLs and cache paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			opts.Overrides = c.overrides
			results, err := c.app.Resolve(cmd.Context(), opts, args)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				p := newPrinter(cmd.OutOrStdout())
				for _, res := range results {
					p.result(res)
				}
			}

			for _, res := range results {
				if !res.Resolution.Found() {
					return domain.ErrUnresolvedSpecifiers
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Importer, "importer", "", "URL or path of the importing module (default: the project root)")
	cmd.Flags().BoolVar(&opts.MustMap, "must-map", false, "Resolve through the import map only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
