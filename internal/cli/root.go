package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wareledger/wareledger/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// NewRootCommand creates the wareledger command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wareledger",
		Short: "Warehouse inventory ledger",
		Long: `wareledger records objects, sellers, receipts, write-offs and prices of a
warehouse and serves them to the browser UI over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.LogFormat {
			case "", "text", "json":
			default:
				return fmt.Errorf("invalid log format %q: must be text or json", opts.LogFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "configuration file path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format override (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())
	cmd.AddCommand(NewCompletionCommand())

	return cmd
}
