package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareledger/wareledger/internal/config"
	"github.com/wareledger/wareledger/internal/session"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "wareledger", cmd.Use)

	for _, name := range []string{"serve", "setup", "hash-password", "completion"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, config.DefaultPath, flag.DefValue)
}

func TestRejectsUnknownLogFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--log-format", "xml", "hash-password", "x"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"argument", []string{"hash-password", "s3cret"}, ""},
		{"stdin", []string{"hash-password"}, "s3cret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewRootCommand()
			cmd.SetArgs(tt.args)
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetOut(&out)
			require.NoError(t, cmd.Execute())
			assert.Equal(t, session.HashCredential("s3cret")+"\n", out.String())
		})
	}

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"hash-password"})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	assert.EqualError(t, cmd.Execute(), "password is empty")
}

type setupFixture struct {
	admin, target         *sql.DB
	adminMock, targetMock sqlmock.Sqlmock
	dsns                  []string
	opts                  *SetupOptions
}

func newSetupFixture(t *testing.T) *setupFixture {
	t.Helper()
	f := &setupFixture{}
	var err error
	f.admin, f.adminMock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	f.target, f.targetMock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	dir := t.TempDir()
	script := filepath.Join(dir, "init_db.sql")
	require.NoError(t, os.WriteFile(script, []byte("CREATE TABLE objects (id serial primary key);"), 0o600))

	f.opts = &SetupOptions{
		RootOptions: &RootOptions{},
		Host:        "db.internal",
		Port:        5433,
		User:        "postgres",
		Password:    "pw",
		DBName:      "stock",
		Script:      script,
		Output:      filepath.Join(dir, "config.yaml"),
		Open: func(dsn string) (*sql.DB, error) {
			f.dsns = append(f.dsns, dsn)
			if len(f.dsns) == 1 {
				return f.admin, nil
			}
			return f.target, nil
		},
	}
	return f
}

func (f *setupFixture) expectScript() {
	f.targetMock.ExpectBegin()
	f.targetMock.ExpectExec("CREATE TABLE objects (id serial primary key);").WillReturnResult(sqlmock.NewResult(0, 0))
	f.targetMock.ExpectCommit()
	f.targetMock.ExpectClose()
}

func TestSetupCreatesDatabaseAndSavesConfig(t *testing.T) {
	f := newSetupFixture(t)
	f.adminMock.ExpectExec(`CREATE DATABASE "stock"`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.adminMock.ExpectClose()
	f.expectScript()

	var out bytes.Buffer
	// server host, server port, company name, company logo
	input := strings.NewReader("\n\nАкме\n\n")
	require.NoError(t, runSetup(context.Background(), f.opts, input, &out))

	require.NoError(t, f.adminMock.ExpectationsWereMet())
	require.NoError(t, f.targetMock.ExpectationsWereMet())
	require.Len(t, f.dsns, 2)
	assert.Contains(t, f.dsns[0], "@db.internal:5433/postgres")
	assert.Contains(t, f.dsns[1], "@db.internal:5433/stock")
	assert.Contains(t, out.String(), "Database 'stock' created successfully.")
	assert.Contains(t, out.String(), "Server Port [8080]: ")

	cfg, err := config.Load(f.opts.Output)
	require.NoError(t, err)
	assert.Equal(t, "stock", cfg.Database.Name)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "Акме", cfg.Company.Name)
	assert.Equal(t, "logo.png", cfg.Company.Logo)
}

func TestSetupReportsExistingDatabase(t *testing.T) {
	f := newSetupFixture(t)
	f.opts.ServerHost, f.opts.ServerPort = "0.0.0.0", 9000
	f.opts.CompanyName, f.opts.CompanyLogo = "Acme", "acme.svg"
	f.adminMock.ExpectExec(`CREATE DATABASE "stock"`).WillReturnError(&pq.Error{Code: "42P04", Message: `database "stock" already exists`})
	f.adminMock.ExpectClose()
	f.expectScript()

	var out bytes.Buffer
	require.NoError(t, runSetup(context.Background(), f.opts, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Database 'stock' already exists.")
	assert.Contains(t, out.String(), "SQL init script applied successfully.")
}

func TestSetupStopsOnCreateFailure(t *testing.T) {
	f := newSetupFixture(t)
	f.opts.ServerHost, f.opts.ServerPort = "0.0.0.0", 9000
	f.opts.CompanyName, f.opts.CompanyLogo = "Acme", "acme.svg"
	f.adminMock.ExpectExec(`CREATE DATABASE "stock"`).WillReturnError(errors.New("permission denied to create database"))
	f.adminMock.ExpectClose()

	var out bytes.Buffer
	err := runSetup(context.Background(), f.opts, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error while creating database: permission denied")
	assert.Len(t, f.dsns, 1)
	_, statErr := os.Stat(f.opts.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSetupRollsBackFailedScript(t *testing.T) {
	f := newSetupFixture(t)
	f.opts.ServerHost, f.opts.ServerPort = "0.0.0.0", 9000
	f.opts.CompanyName, f.opts.CompanyLogo = "Acme", "acme.svg"
	f.adminMock.ExpectExec(`CREATE DATABASE "stock"`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.adminMock.ExpectClose()
	f.targetMock.ExpectBegin()
	f.targetMock.ExpectExec("CREATE TABLE objects (id serial primary key);").WillReturnError(errors.New("syntax error"))
	f.targetMock.ExpectRollback()
	f.targetMock.ExpectClose()

	var out bytes.Buffer
	require.Error(t, runSetup(context.Background(), f.opts, strings.NewReader(""), &out))
	require.NoError(t, f.targetMock.ExpectationsWereMet())
	assert.Contains(t, out.String(), "Error applying SQL script: syntax error")
}

func TestCollectSetupPromptsWithDefaults(t *testing.T) {
	opts := &SetupOptions{RootOptions: &RootOptions{}}
	var out bytes.Buffer
	// host, port, user, password, name, server host, server port, company, logo
	input := "\n\n\nsecret\nstock\n\nabc\n\n\n"

	_, err := collectSetup(opts, newPrompter(strings.NewReader(input), &out))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")

	input = "\n\n\nsecret\nstock\n\n\n\n\n"
	cfg, err := collectSetup(opts, newPrompter(strings.NewReader(input), &out))
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "MyCompany", cfg.Company.Name)

	_, err = collectSetup(opts, newPrompter(strings.NewReader("\n\n\n\n\n"), &out))
	assert.EqualError(t, err, "database name is required")
}

func TestCompletion(t *testing.T) {
	root := NewRootCommand()
	for _, shell := range []string{"bash", "zsh", "fish"} {
		script, err := GenerateCompletion(root, shell)
		require.NoError(t, err, shell)
		assert.Contains(t, string(script), "wareledger", shell)
	}
	_, err := GenerateCompletion(root, "tcsh")
	require.Error(t, err)

	home := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, InstallCompletion(NewPrinter(&out), home, "fish", []byte("complete -c wareledger")))
	data, err := os.ReadFile(filepath.Join(home, ".config", "fish", "completions", "wareledger.fish"))
	require.NoError(t, err)
	assert.Equal(t, "complete -c wareledger", string(data))
	assert.Contains(t, out.String(), "✓ Completion script installed to:")
}
