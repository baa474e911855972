package main

import (
	"context"
	"fmt"

	"github.com/mabroukmoatez/formly/core/session"
)

func (cli *commandLine) markCompleted(before string) error {
	date, err := session.ParseDate(before)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", before)
	}

	n, err := cli.sessionSvc.MarkCompleted(context.Background(), date)
	if err != nil {
		return err
	}
	fmt.Printf("%d instance(s) marked completed\n", n)
	return nil
}
