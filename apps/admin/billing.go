package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/owais185-web/LuminaLMSPush/core/billing"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
)

func (cli *commandLine) enroll(ctx context.Context, userID, courseID, coupon string) error {
	enr, err := cli.billing.Enroll(ctx, userID, courseID, coupon)
	if err != nil {
		return err
	}
	if enr.Transaction != nil {
		fmt.Fprintf(cli.out, "charged $%s, invoice %s\n", enr.Transaction.Amount.StringFixed(2), enr.Transaction.InvoiceID)
	}
	fmt.Fprintf(cli.out, "%s enrolled in %q\n", enr.User.Name, enr.Course.Title)
	return nil
}

func (cli *commandLine) listRefunds(ctx context.Context) error {
	for _, t := range cli.tickets.PendingRefunds(ctx) {
		fmt.Fprintf(cli.out, "%s\t%s\t%s\t%s\n", t.ID, t.RelatedTransactionID.String, t.UserName, t.Subject)
	}
	return nil
}

func (cli *commandLine) approveRefund(ctx context.Context, ticketID, response string) error {
	t, err := cli.billing.ApproveRefund(ctx, ticketID, response)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s: %s\n", t.ID, t.Status, t.AdminResponse.String)
	return nil
}

func (cli *commandLine) rejectRefund(ctx context.Context, ticketID, response string) error {
	t, err := cli.billing.RejectRefund(ctx, ticketID, response)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s: %s\n", t.ID, t.Status, t.AdminResponse.String)
	return nil
}

func (cli *commandLine) printInvoice(ctx context.Context, txID string) error {
	tx, err := cli.transactions.FindByID(ctx, txID)
	if err != nil {
		return err
	}
	invoice, err := billing.Invoice(tx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, invoice)
	return nil
}

func (cli *commandLine) printReport(ctx context.Context) error {
	rep := cli.billing.Report(ctx)
	fmt.Fprintf(cli.out, "revenue             $%s\n", rep.Revenue.StringFixed(2))
	fmt.Fprintf(cli.out, "refunds             $%s\n", rep.Refunds.StringFixed(2))
	fmt.Fprintf(cli.out, "instructor payouts  $%s\n", rep.InstructorPayouts.StringFixed(2))
	fmt.Fprintf(cli.out, "net profit          $%s\n", rep.NetProfit.StringFixed(2))

	statuses := make([]string, 0, len(rep.Counts))
	for status := range rep.Counts {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(cli.out, "%-19s %d\n", status, rep.Counts[transaction.Status(status)])
	}
	return nil
}
