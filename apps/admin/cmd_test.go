package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/taqyeem/apps/api/echo"
	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/services/spreadsheet"
	inmemdb "github.com/trezcool/taqyeem/storage/database/inmem"
	"github.com/trezcool/taqyeem/tests"
)

var personRepo person.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	personRepo = inmemdb.NewPersonRepository(inmemdb.Open())
	validate, _ := testutil.Validator()

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		conf:      testutil.Config(),
		personSvc: person.NewService(personRepo, validate, testutil.Logger()),
		out:       out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if !strings.Contains(err.Error(), tt.wantErrStr) {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _ := setup(t)
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "visit_index", "sql"}},
	})
}

func Test_commandLine_importExport(t *testing.T) {
	cli, out := setup(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "teachers.xlsx")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, spreadsheet.WritePersons(f, "teachers", []person.Person{
		{ArabicName: "أحمد علي", Oracle: "1001"},
		{ArabicName: "فاطمة حسن", Oracle: "1002"},
		{ArabicName: "   "},
	}))
	require.NoError(t, f.Close())
	dst := filepath.Join(dir, "export.xlsx")

	runCLITests(t, cli, []cliTest{
		{name: "import: no args", args: []string{"import"}, wantErr: errHelp},
		{name: "import: missing group", args: []string{"import", "-account", "acc-1", "-kind", "teacher", "-file", src}, wantErr: errHelp},
		{name: "import: missing file", args: []string{"import", "-account", "acc-1", "-kind", "teacher", "-group", "cycle1", "-file", filepath.Join(dir, "nope.xlsx")}, wantErrStr: "opening sheet"},
		{name: "import: invalid group", args: []string{"import", "-account", "acc-1", "-kind", "teacher", "-group", "finance", "-file", src}, wantErrStr: "group"},
		{name: "import", args: []string{"import", "-account", "acc-1", "-kind", "teacher", "-group", "cycle1", "-file", src}},
		{name: "export: no file", args: []string{"export", "-account", "acc-1"}, wantErr: errHelp},
		{name: "export", args: []string{"export", "-account", "acc-1", "-kind", "teacher", "-file", dst}},
	})

	assert.Contains(t, out.String(), "imported 2 of 2 teachers")
	assert.Contains(t, out.String(), "exported 2 persons to "+dst)

	persons, err := personRepo.QueryPersons(context.Background(), "acc-1", person.QueryFilter{Kind: person.KindTeacher, Group: person.CycleOne})
	require.NoError(t, err)
	assert.Len(t, persons, 2)

	f, err = os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	grid, err := spreadsheet.ReadGrid(f, dst)
	require.NoError(t, err)
	rows := person.NormalizeGrid(grid)
	require.Len(t, rows, 2)
	assert.Equal(t, "أحمد علي", rows[0].ArabicName)
	assert.Equal(t, "1002", rows[1].Oracle)
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no account", args: []string{"token"}, wantErr: errHelp},
		{name: "token", args: []string{"token", "-account", "acc-1", "-email", "Admin@School.ae"}},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	raw := lines[len(lines)-1]
	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cli.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, "admin@school.ae", claims.Email)
	assert.Equal(t, core.NewSession("acc-1", "admin@school.ae"), core.NewSession(claims.Subject, claims.Email))
}
