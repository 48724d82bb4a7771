package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/user"
)

func (cli *commandLine) printResult(res core.Result) error {
	if !res.Success {
		return errors.New(res.Error)
	}
	fmt.Fprintln(cli.out, res.Message)
	return nil
}

func (cli *commandLine) cancelClass(ctx context.Context, classID string, role user.Role, name string) error {
	return cli.printResult(cli.classes.Cancel(ctx, classID, role, name))
}

func (cli *commandLine) reschedule(ctx context.Context, classID string, start time.Time, role user.Role, name string) error {
	return cli.printResult(cli.classes.Reschedule(ctx, classID, start, role, name))
}
