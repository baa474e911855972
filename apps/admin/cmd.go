package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/mabroukmoatez/formly/core/session"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	sessionSvc *session.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND - run database migrations (up, up-by-one, down, redo, status, version)")
	fmt.Println("  markcompleted -before DATE - mark past instances completed (DATE: YYYY-MM-DD)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	markCompletedCmd := flag.NewFlagSet("markcompleted", flag.ExitOnError)
	markCompletedBefore := markCompletedCmd.String("before", "", "Instances dated strictly before this date (YYYY-MM-DD) are marked completed.")

	switch args[1] {
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if migrateCmd.NArg() == 0 {
			migrateCmd.Usage()
			return errHelp
		}
		return cli.migrate(migrateCmd.Args())
	case "markcompleted":
		if err := markCompletedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *markCompletedBefore == "" {
			markCompletedCmd.Usage()
			return errHelp
		}
		return cli.markCompleted(*markCompletedBefore)
	default:
		cli.printUsage()
		return errHelp
	}
}
