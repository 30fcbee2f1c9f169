// Package commands implements the CLI commands for modcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/build"
)

// CLI represents the command line interface for modcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	overrides app.Overrides
	verbose   bool
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, opts app.ResolveOptions, specifiers []string) ([]app.Result, error)
	Load(ctx context.Context, opts app.ResolveOptions, specifier string) (*app.Loaded, error)
	Verify(ctx context.Context, ov app.Overrides) (*app.VerifyReport, error)
	CachePath(ov app.Overrides, rawURL string) (string, error)
	SetVerbose(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "modcache",
		Short:         "Resolve module specifiers against a frozen lock map and a local cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.overrides.Dir, "dir", "C", "", "Directory to start config discovery from")
	flags.StringVar(&c.overrides.ConfigFile, "config", "", "Path to the config file")
	flags.StringVar(&c.overrides.CacheDir, "cache-dir", "", "Cache root holding deps/ and npm/")
	flags.StringVar(&c.overrides.LockFile, "lock", "", "Path to the lock map")
	flags.StringVar(&c.overrides.ImportMap, "import-map", "", "Path to the import map")
	flags.BoolVar(&c.verbose, "verbose", false, "Enable debug logging")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		c.app.SetVerbose(c.verbose)
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newCachePathCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
