// Package cli implements the idbridge commands, querying the host user and group databases.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ubuntu/decorate"
	"github.com/ubuntu/idbridge/internal/consts"
	"github.com/ubuntu/idbridge/internal/nss"
	"github.com/ubuntu/idbridge/internal/registry"
	"github.com/ubuntu/idbridge/log"
)

// App encapsulate commands and options of the CLI, which can be controlled by env variables and config files.
type App struct {
	rootCmd cobra.Command
	viper   *viper.Viper
	config  appConfig
	options options

	registry *registry.Registry
}

// groupsConfig tunes the discovery of the group lists.
type groupsConfig struct {
	InitialCapacity int
	MaxCapacity     int
}

// appConfig defines configuration parameters of the CLI.
type appConfig struct {
	Verbosity int
	Format    string
	Groups    groupsConfig
}

// only overridable for tests.
type options struct {
	facility   nss.Facility
	configDir  string
	isTerminal func(io.Writer) bool
}

type option func(*options)

// New registers commands and return a new App.
func New(args ...option) *App {
	opts := options{
		facility:   nss.NewLibc(),
		configDir:  consts.DefaultConfigDir,
		isTerminal: isTerminal,
	}
	for _, f := range args {
		f(&opts)
	}

	a := App{options: opts}
	a.rootCmd = cobra.Command{
		Use:   fmt.Sprintf("%s COMMAND", consts.CmdName),
		Short: "Query the host user and group databases",
		Long: `Query the user and group databases of the host, as resolved by the C library
through the name service switch configuration.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.rootCmd.SilenceUsage = true

			// Set config defaults
			a.config = appConfig{
				Format: formatAuto,
				Groups: groupsConfig{
					MaxCapacity: consts.DefaultMaxGroupCapacity,
				},
			}

			// Install and unmarshall configuration
			if err := initViperConfig(consts.CmdName, cmd, a.viper, a.options.configDir); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to decode configuration into struct: %w", err)
			}

			setVerboseMode(a.config.Verbosity)
			log.Debugf(context.Background(), "Verbosity: %d", a.config.Verbosity)

			if !slices.Contains(formats, a.config.Format) {
				return fmt.Errorf("invalid output format %q, must be one of %v", a.config.Format, formats)
			}

			a.registry = registry.New(nss.New(a.options.facility,
				nss.WithInitialGroupCapacity(a.config.Groups.InitialCapacity),
				nss.WithMaxGroupCapacity(a.config.Groups.MaxCapacity),
			))

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error { return cmd.Usage() },
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		// We display errors ourselves
		SilenceErrors: true,
	}
	a.viper = viper.New()

	installVerbosityFlag(&a.rootCmd, a.viper)
	installConfigFlag(&a.rootCmd)
	installFormatFlag(&a.rootCmd, a.viper)
	installMaxGroupsFlag(&a.rootCmd, a.viper)

	// subcommands
	a.installUser()
	a.installGroup()
	a.installVersion()

	return &a
}

// installFormatFlag adds the --format option.
func installFormatFlag(cmd *cobra.Command, vip *viper.Viper) *string {
	r := cmd.PersistentFlags().StringP("format", "f", formatAuto,
		fmt.Sprintf("output format, one of %v (auto is table on a terminal, text otherwise)", formats))
	decorate.LogOnError(vip.BindPFlag("format", cmd.PersistentFlags().Lookup("format")))
	return r
}

// installMaxGroupsFlag adds the --max-groups option.
func installMaxGroupsFlag(cmd *cobra.Command, vip *viper.Viper) *int {
	r := cmd.PersistentFlags().Int("max-groups", consts.DefaultMaxGroupCapacity,
		"largest number of groups accepted for a single user")
	decorate.LogOnError(vip.BindPFlag("groups.maxcapacity", cmd.PersistentFlags().Lookup("max-groups")))
	return r
}

// Run executes the command and associated process. It returns an error on syntax/usage error.
func (a *App) Run() error {
	return a.rootCmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a *App) UsageError() bool {
	return !a.rootCmd.SilenceUsage
}

// RootCmd returns the root command for the app.
// Shouldn't be in general necessary apart when running generators.
func (a *App) RootCmd() *cobra.Command {
	return &a.rootCmd
}
