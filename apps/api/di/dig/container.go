package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/taqyeem/apps/api/echo"
	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/report"
	"github.com/trezcool/taqyeem/core/visit"
	emailsvc "github.com/trezcool/taqyeem/services/email"
	logsvc "github.com/trezcool/taqyeem/services/logger"
	"github.com/trezcool/taqyeem/storage/database"
	inmemdb "github.com/trezcool/taqyeem/storage/database/inmem"
	sqlxrepos "github.com/trezcool/taqyeem/storage/database/sqlx"
	"github.com/trezcool/taqyeem/storage/files/alioss"
	"github.com/trezcool/taqyeem/storage/files/localfs"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// CloseDB releases the record store; it is a no-op for the in-memory one.
	CloseDB func() error

	Repositories struct {
		dig.Out
		Persons     person.Repository
		Evaluations evaluation.Repository
		Visits      visit.Repository
		Close       CloseDB
	}

	EvaluationParams struct {
		dig.In
		Repo      evaluation.Repository
		Persons   person.Repository
		Assembler *report.Assembler
		Publisher *report.Publisher
		MailSvc   core.EmailService
		Validate  *validator.Validate
		Logger    core.Logger
		Location  *time.Location
	}

	ServerParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		PersonSvc     *person.Service
		EvaluationSvc *evaluation.Service
		VisitSvc      *visit.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newLocation(conf *core.Config) *time.Location {
	return conf.Location
}

// newRepositories opens the configured record store: PostgreSQL, or the in-memory one.
func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == "inmem" {
		db := inmemdb.Open()
		return Repositories{
			Persons:     inmemdb.NewPersonRepository(db),
			Evaluations: inmemdb.NewEvaluationRepository(db),
			Visits:      inmemdb.NewVisitRepository(db),
			Close:       func() error { return nil },
		}
	}

	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	xdb := sqlxrepos.Wrap(db)
	return Repositories{
		Persons:     sqlxrepos.NewPersonRepository(xdb),
		Evaluations: sqlxrepos.NewEvaluationRepository(xdb),
		Visits:      sqlxrepos.NewVisitRepository(xdb, database.DSN(conf), loggerParam.Logger),
		Close:       db.Close,
	}
}

func newObjectStorage(conf *core.Config) (core.ObjectStorage, error) {
	switch conf.Storage.Backend {
	case "oss":
		s, err := alioss.New(conf.Storage.OSS)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local", "":
		s, err := localfs.New(conf.Storage.LocalDir, conf.Storage.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newAssembler(conf *core.Config, logger core.Logger) (*report.Assembler, error) {
	return report.NewAssembler(conf.Report, conf.Location, logger)
}

func newEvaluationService(p EvaluationParams) *evaluation.Service {
	return evaluation.NewService(evaluation.Deps{
		Repo:      p.Repo,
		Persons:   p.Persons,
		Assembler: p.Assembler,
		Publisher: p.Publisher,
		MailSvc:   p.MailSvc,
		Validate:  p.Validate,
		Logger:    p.Logger,
		Location:  p.Location,
	})
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		PersonSvc:     p.PersonSvc,
		EvaluationSvc: p.EvaluationSvc,
		VisitSvc:      p.VisitSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newLocation))
	must(c.Provide(newRepositories))
	must(c.Provide(newObjectStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newAssembler))
	must(c.Provide(report.NewPublisher))
	must(c.Provide(person.NewService))
	must(c.Provide(visit.NewService))
	must(c.Provide(newEvaluationService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
