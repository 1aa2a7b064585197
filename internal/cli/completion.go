package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command. It replaces cobra's
// default so scripts can also be installed in place.
func NewCompletionCommand() *cobra.Command {
	var install bool

	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate or install shell completion scripts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := GenerateCompletion(cmd.Root(), args[0])
			if err != nil {
				return err
			}
			if !install {
				_, err := cmd.OutOrStdout().Write(script)
				return err
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return InstallCompletion(NewPrinter(cmd.OutOrStdout()), home, args[0], script)
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "write the script into the shell's completion directory")
	return cmd
}

// GenerateCompletion renders the completion script for shell.
func GenerateCompletion(root *cobra.Command, shell string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch shell {
	case "bash":
		err = root.GenBashCompletionV2(&buf, true)
	case "zsh":
		err = root.GenZshCompletion(&buf)
	case "fish":
		err = root.GenFishCompletion(&buf, true)
	default:
		return nil, fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompletionPath is where InstallCompletion writes the script for shell.
func CompletionPath(home, shell string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".bash_completion.d", "wareledger"), nil
	case "zsh":
		return filepath.Join(home, ".zsh", "completion", "_wareledger"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "wareledger.fish"), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}
}

// InstallCompletion writes script under home and prints how to enable it.
func InstallCompletion(p *Printer, home, shell string, script []byte) error {
	installPath, err := CompletionPath(home, shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(installPath), 0o755); err != nil {
		return fmt.Errorf("failed to create completion directory: %w", err)
	}
	if err := os.WriteFile(installPath, script, 0o644); err != nil {
		return fmt.Errorf("failed to write completion script: %w", err)
	}

	p.Success("Completion script installed to: %s", installPath)
	switch shell {
	case "bash":
		p.Info("add to your shell config: source ~/.bash_completion.d/wareledger")
	case "zsh":
		p.Info("add to your shell config: fpath=(~/.zsh/completion $fpath); autoload -Uz compinit && compinit")
	case "fish":
		p.Info("fish loads completions from ~/.config/fish/completions/ automatically")
	}
	return nil
}
