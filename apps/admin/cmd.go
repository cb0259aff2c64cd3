package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sql.DB
	personSvc *person.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the database")
	_, _ = fmt.Fprintln(cli.out, "  import -account ID -kind teacher|manager -group GROUP -file PATH - import persons from a .xlsx/.xls sheet")
	_, _ = fmt.Fprintln(cli.out, "  export -account ID [-kind teacher|manager] [-group GROUP] -file PATH - export persons to a .xlsx sheet")
	_, _ = fmt.Fprintln(cli.out, "  token -account ID [-email EMAIL] - issue an API token for an account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importAccount := importCmd.String("account", "", "The account owning the persons.")
	importKind := importCmd.String("kind", "", "teacher or manager.")
	importGroup := importCmd.String("group", "", "The cycle (teachers) or department (managers) of every imported person.")
	importFile := importCmd.String("file", "", "Path of the .xlsx or .xls sheet.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(cli.out)
	exportAccount := exportCmd.String("account", "", "The account owning the persons.")
	exportKind := exportCmd.String("kind", "", "Only export teachers or managers.")
	exportGroup := exportCmd.String("group", "", "Only export this cycle or department.")
	exportFile := exportCmd.String("file", "", "Path of the .xlsx sheet to write.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenAccount := tokenCmd.String("account", "", "The account the token signs in to.")
	tokenEmail := tokenCmd.String("email", "", "The user's email, recorded as the author of new records.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importAccount == "" || *importKind == "" || *importGroup == "" || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importPersons(core.NewSession(*importAccount, ""), person.Kind(*importKind), *importGroup, *importFile)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportAccount == "" || *exportFile == "" {
			exportCmd.Usage()
			return errHelp
		}
		filter := person.QueryFilter{Kind: person.Kind(*exportKind), Group: *exportGroup}
		return cli.exportPersons(core.NewSession(*exportAccount, ""), filter, *exportFile)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenAccount == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.NewSession(*tokenAccount, *tokenEmail))
	default:
		cli.printUsage()
		return errHelp
	}
}

func newTranslator(validate *validator.Validate) ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	return translator
}
