package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wareledger/wareledger/internal/session"
)

// NewHashPasswordCommand creates the hash-password command.
func NewHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the stored digest of a password",
		Long: `Print the digest the users table stores for a password. Without an argument
the password is read from the first line of standard input.

Example:
  wareledger hash-password s3cret
  echo s3cret | wareledger hash-password`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					password = strings.TrimRight(scanner.Text(), "\r")
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			if password == "" {
				return errors.New("password is empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), session.HashCredential(password))
			return nil
		},
	}
}
