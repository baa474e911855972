package main

import (
	"log"
	"os"

	"github.com/mabroukmoatez/formly/core"
	"github.com/mabroukmoatez/formly/core/session"
	emailsvc "github.com/mabroukmoatez/formly/services/email"
	"github.com/mabroukmoatez/formly/storage/database"
	sqlxrepos "github.com/mabroukmoatez/formly/storage/database/sqlx"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db: db,
		sessionSvc: session.NewService(
			sqlxrepos.NewInstanceRepository(db),
			emailsvc.NewConsoleService(conf),
			validate,
			conf,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
