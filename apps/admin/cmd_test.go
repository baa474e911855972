package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core"
	"github.com/mabroukmoatez/formly/core/session"
	emailsvc "github.com/mabroukmoatez/formly/services/email"
	dummydb "github.com/mabroukmoatez/formly/storage/database/dummy"
	testutil "github.com/mabroukmoatez/formly/tests"
)

var instanceRepo session.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	instanceRepo = dummydb.NewInstanceRepository(db)

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Formly",
		DefaultFromEmail: mail.Address{Address: "noreply@test.cd"},
		Scheduling: core.SchedulingConfig{
			MaxGeneratedInstances:   1000,
			MaxRecurrenceWindowDays: 731,
		},
	}
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	return &commandLine{
		sessionSvc: session.NewService(instanceRepo, emailsvc.NewConsoleServiceMock(conf), validate, conf),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkCliErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("run() error = %v, wantErrStr %q", err, tt.wantErrStr)
		}
	default:
		if err != nil {
			t.Errorf("run(): %v", err)
		}
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", args: []string{}, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_markCompleted(t *testing.T) {
	cli := setup(t)

	sessionUUID := uuid.New()
	past := testutil.CreateInstance(t, instanceRepo, sessionUUID, session.NewDate(2024, time.January, 3), "09:00", "12:00", 0)
	future := testutil.CreateInstance(t, instanceRepo, sessionUUID, session.NewDate(2024, time.June, 3), "09:00", "12:00", 0)

	tests := []cliTest{
		{name: "no flag", args: []string{"markcompleted"}, wantErr: errHelp},
		{name: "bad date", args: []string{"markcompleted", "-before", "03/06/2024"}, wantErrStr: "invalid date \"03/06/2024\": expected YYYY-MM-DD"},
		{name: "ok", args: []string{"markcompleted", "-before", "2024-02-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	got, err := instanceRepo.GetInstanceByUUID(context.Background(), past.UUID)
	if err != nil {
		t.Fatalf("GetInstanceByUUID(): %v", err)
	}
	if got.Status != session.StatusCompleted {
		t.Errorf("past instance status = %q, want %q", got.Status, session.StatusCompleted)
	}

	got, err = instanceRepo.GetInstanceByUUID(context.Background(), future.UUID)
	if err != nil {
		t.Fatalf("GetInstanceByUUID(): %v", err)
	}
	if got.Status != session.StatusScheduled {
		t.Errorf("future instance status = %q, want %q", got.Status, session.StatusScheduled)
	}
}
