package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/owais185-web/LuminaLMSPush/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	*app
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                   - run a goose command on the SQL store")
	fmt.Fprintln(cli.out, "  seed                                                     - write the demo data of empty collections")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL -role ROLE               - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                               - reset user's password")
	fmt.Fprintln(cli.out, "  signin -token TOKEN                                      - sign in with an identity token")
	fmt.Fprintln(cli.out, "  enroll -user ID -course ID [-coupon CODE]                - enroll a user, charging paid courses")
	fmt.Fprintln(cli.out, "  cancelclass -class ID -role ROLE -name NAME              - cancel or withdraw from a live class")
	fmt.Fprintln(cli.out, "  reschedule -class ID -at RFC3339 -role ROLE -name NAME   - move a live class")
	fmt.Fprintln(cli.out, "  refunds                                                  - list pending refund requests")
	fmt.Fprintln(cli.out, "  approverefund -ticket ID [-response TEXT]                - refund the ticket's transaction")
	fmt.Fprintln(cli.out, "  rejectrefund -ticket ID [-response TEXT]                 - decline a refund request")
	fmt.Fprintln(cli.out, "  invoice -tx ID                                           - print a transaction invoice")
	fmt.Fprintln(cli.out, "  report                                                   - print the financial report")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse reports errHelp when a required flag is empty.
func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	for _, val := range required {
		if *val == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "seed":
		return cli.seed(ctx)

	case "adduser":
		cmd := cli.newFlagSet("adduser")
		name := cmd.String("name", "", "The user's full name.")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		role := cmd.String("role", string(user.RoleStudent), "One of admin, teacher or student.")
		if err := parse(cmd, args[2:], name, email); err != nil {
			return err
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		confirm, err := cli.promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		return cli.addUser(ctx, user.NewUser{Name: *name, Email: *email, Role: user.Role(*role), Password: pwd, PasswordConfirm: confirm})

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := parse(cmd, args[2:], email); err != nil {
			return err
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		confirm, err := cli.promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		return cli.resetPassword(ctx, *email, pwd, confirm)

	case "signin":
		cmd := cli.newFlagSet("signin")
		token := cmd.String("token", "", "A signed identity token.")
		if err := parse(cmd, args[2:], token); err != nil {
			return err
		}
		return cli.signIn(ctx, *token)

	case "enroll":
		cmd := cli.newFlagSet("enroll")
		userID := cmd.String("user", "", "The student's id.")
		courseID := cmd.String("course", "", "The course id.")
		coupon := cmd.String("coupon", "", "An optional coupon code.")
		if err := parse(cmd, args[2:], userID, courseID); err != nil {
			return err
		}
		return cli.enroll(ctx, *userID, *courseID, *coupon)

	case "cancelclass":
		cmd := cli.newFlagSet("cancelclass")
		classID := cmd.String("class", "", "The live class id.")
		role := cmd.String("role", "", "The requester's role.")
		name := cmd.String("name", "", "The requester's name.")
		if err := parse(cmd, args[2:], classID, role, name); err != nil {
			return err
		}
		return cli.cancelClass(ctx, *classID, user.Role(*role), *name)

	case "reschedule":
		cmd := cli.newFlagSet("reschedule")
		classID := cmd.String("class", "", "The live class id.")
		at := cmd.String("at", "", "The new start time, RFC 3339.")
		role := cmd.String("role", "", "The requester's role.")
		name := cmd.String("name", "", "The requester's name.")
		if err := parse(cmd, args[2:], classID, at, role, name); err != nil {
			return err
		}
		start, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return err
		}
		return cli.reschedule(ctx, *classID, start, user.Role(*role), *name)

	case "refunds":
		return cli.listRefunds(ctx)

	case "approverefund", "rejectrefund":
		cmd := cli.newFlagSet(args[1])
		ticketID := cmd.String("ticket", "", "The refund ticket id.")
		response := cmd.String("response", "", "The answer sent to the student.")
		if err := parse(cmd, args[2:], ticketID); err != nil {
			return err
		}
		if args[1] == "approverefund" {
			return cli.approveRefund(ctx, *ticketID, *response)
		}
		return cli.rejectRefund(ctx, *ticketID, *response)

	case "invoice":
		cmd := cli.newFlagSet("invoice")
		txID := cmd.String("tx", "", "The transaction id.")
		if err := parse(cmd, args[2:], txID); err != nil {
			return err
		}
		return cli.printInvoice(ctx, *txID)

	case "report":
		return cli.printReport(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}
