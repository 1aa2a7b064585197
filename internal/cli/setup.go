package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/wareledger/wareledger/internal/config"
)

// duplicateDatabase is the SQLSTATE Postgres reports for CREATE DATABASE on
// an existing name.
const duplicateDatabase = "42P04"

// SetupOptions holds flags for the setup command.
type SetupOptions struct {
	*RootOptions
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	CompanyName string
	CompanyLogo string
	ServerHost  string
	ServerPort  int
	Script      string
	Output      string

	// Open connects to a DSN. Nil uses lib/pq.
	Open func(dsn string) (*sql.DB, error)
}

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the database, apply the init script and write config.yaml",
		Long: `Create the Postgres database, apply the SQL init script to it and save the
resulting configuration. Values not given as flags are prompted for.

Example:
  wareledger setup --host 127.0.0.1 --user postgres --dbname stock \
    --company-name ExampleCorp --script init_db.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Host, "host", "", "PostgreSQL host")
	f.IntVar(&opts.Port, "port", 0, "PostgreSQL port")
	f.StringVar(&opts.User, "user", "", "PostgreSQL username")
	f.StringVar(&opts.Password, "password", "", "PostgreSQL password")
	f.StringVar(&opts.DBName, "dbname", "", "database name")
	f.StringVar(&opts.CompanyName, "company-name", "", "company name shown on the site")
	f.StringVar(&opts.CompanyLogo, "company-logo", "", "company logo path")
	f.StringVar(&opts.ServerHost, "server-host", "", "HTTP listen host")
	f.IntVar(&opts.ServerPort, "server-port", 0, "HTTP listen port")
	f.StringVar(&opts.Script, "script", "init_db.sql", "SQL script applied to the new database")
	f.StringVar(&opts.Output, "output", "", "where to write the configuration (defaults to --config)")

	return cmd
}

func runSetup(ctx context.Context, opts *SetupOptions, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := NewPrinter(out)

	cfg, err := collectSetup(opts, newPrompter(in, out))
	if err != nil {
		return err
	}

	open := opts.Open
	if open == nil {
		open = func(dsn string) (*sql.DB, error) { return sql.Open("postgres", dsn) }
	}

	created, err := createDatabase(ctx, open, cfg.Database)
	if err != nil {
		p.Error("Error while creating database: %v", err)
		return err
	}
	if created {
		p.Success("Database '%s' created successfully.", cfg.Database.Name)
	} else {
		p.Warning("Database '%s' already exists.", cfg.Database.Name)
	}

	if err := applyScript(ctx, open, cfg, opts.Script); err != nil {
		p.Error("Error applying SQL script: %v", err)
		return err
	}
	p.Success("SQL init script applied successfully.")

	output := opts.Output
	if output == "" {
		output = opts.ConfigPath
	}
	if output == "" {
		output = config.DefaultPath
	}
	if err := cfg.Save(output); err != nil {
		p.Error("Error saving config file: %v", err)
		return err
	}
	p.Success("Configuration saved to %s", p.Bold(output))
	return nil
}

// collectSetup fills every value not given as a flag from the prompter.
func collectSetup(opts *SetupOptions, pr *prompter) (*config.Config, error) {
	cfg := config.Default()
	var err error

	get := func(flag, label, def string) string {
		if err != nil || flag != "" {
			return flag
		}
		var v string
		v, err = pr.ask(label, def)
		return v
	}
	getInt := func(flag int, label string, def int) int {
		if err != nil || flag != 0 {
			return flag
		}
		raw, askErr := pr.ask(label, strconv.Itoa(def))
		if askErr != nil {
			err = askErr
			return 0
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		if convErr != nil {
			err = fmt.Errorf("%s: %q is not a number", label, raw)
		}
		return n
	}

	cfg.Database.Host = get(opts.Host, "PostgreSQL Host", "localhost")
	cfg.Database.Port = getInt(opts.Port, "PostgreSQL Port", 5432)
	cfg.Database.User = get(opts.User, "PostgreSQL Username", "postgres")
	cfg.Database.Password = get(opts.Password, "PostgreSQL Password", "")
	cfg.Database.Name = get(opts.DBName, "Database Name", "")
	cfg.Server.Host = get(opts.ServerHost, "Server Host", "localhost")
	cfg.Server.Port = getInt(opts.ServerPort, "Server Port", 8080)
	cfg.Company.Name = get(opts.CompanyName, "Company Name", "MyCompany")
	cfg.Company.Logo = get(opts.CompanyLogo, "Company Logo (URL or path)", "logo.png")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.Name) == "" {
		return nil, errors.New("database name is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createDatabase reports false when the database already exists.
func createDatabase(ctx context.Context, open func(string) (*sql.DB, error), db config.DatabaseConfig) (bool, error) {
	conn, err := open(db.DSN("postgres"))
	if err != nil {
		return false, err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(db.Name))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == duplicateDatabase {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func applyScript(ctx context.Context, open func(string) (*sql.DB, error), cfg *config.Config, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	conn, err := open(cfg.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// prompter asks for one line per value and falls back to the default on an
// empty answer.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return def, nil
	}
	return line, nil
}
