package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	logsvc "github.com/trezcool/taqyeem/services/logger"
	"github.com/trezcool/taqyeem/storage/database"
	sqlxrepos "github.com/trezcool/taqyeem/storage/database/sqlx"
)

var logger *logsvc.RollbarLogger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(false)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	validate := validator.New()
	person.InitValidators(validate, newTranslator(validate))

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		personSvc: person.NewService(sqlxrepos.NewPersonRepository(sqlxrepos.Wrap(db)), validate, logger),
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
