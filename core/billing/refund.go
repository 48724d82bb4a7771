package billing

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/ticket"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
)

const (
	DefaultApprovalResponse  = "Refund approved and processed."
	DefaultRejectionResponse = "Refund request declined."
)

// RequestRefund opens a high priority refund ticket for one of the user's
// succeeded transactions and alerts the admin recipient.
func (svc *Service) RequestRefund(ctx context.Context, userID, transactionID, reason string) (ticket.Ticket, error) {
	tx, err := svc.Transactions.FindByID(ctx, transactionID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if tx.UserID != userID {
		return ticket.Ticket{}, ErrNotOwner
	}
	if tx.Status != transaction.StatusSucceeded {
		return ticket.Ticket{}, errors.Wrapf(ErrNotRefundable, "transaction %s is %s", tx.ID, tx.Status)
	}

	usr, _ := svc.payer(ctx, userID)
	tk, err := svc.Tickets.Add(ctx, ticket.Ticket{
		UserID:               userID,
		UserName:             usr.Name,
		Subject:              "Refund Request: $" + tx.Amount.StringFixed(2),
		Category:             ticket.CategoryRefund,
		Description:          core.CleanString(reason),
		Status:               ticket.StatusOpen,
		Priority:             ticket.PriorityHigh,
		RelatedTransactionID: null.StringFrom(tx.ID),
	})
	if err != nil {
		return ticket.Ticket{}, err
	}

	svc.notify(ctx, svc.adminID, notification.TypeInfo,
		fmt.Sprintf(`%s requested a refund for "%s".`, usr.Name, tx.Description),
		notification.NewMetadata(notification.EventTicket,
			notification.KeyTicketID, tk.ID,
			notification.KeyTransactionID, tx.ID,
		),
	)
	return tk, nil
}

func (svc *Service) refundTicket(ctx context.Context, ticketID string) (ticket.Ticket, error) {
	tk, err := svc.Tickets.FindByID(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if !tk.IsRefund() || !tk.RelatedTransactionID.Valid {
		return ticket.Ticket{}, ErrNotRefundTkt
	}
	return tk, nil
}

// ApproveRefund refunds the ticket's transaction, then closes the ticket.
// The ticket is left untouched when the refund fails.
func (svc *Service) ApproveRefund(ctx context.Context, ticketID, response string) (ticket.Ticket, error) {
	tk, err := svc.refundTicket(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if tk.Status == ticket.StatusClosed {
		return tk, nil
	}

	tx, err := svc.Transactions.Refund(ctx, tk.RelatedTransactionID.String)
	if err != nil {
		return ticket.Ticket{}, errors.Wrapf(err, "refunding ticket %s", tk.ID)
	}

	if response = core.CleanString(response); response == "" {
		response = DefaultApprovalResponse
	}
	tk, err = svc.Tickets.Close(ctx, tk.ID, response)
	if err != nil {
		return ticket.Ticket{}, err
	}

	svc.notify(ctx, tk.UserID, notification.TypeSuccess,
		fmt.Sprintf(`Your refund of $%s for "%s" was approved.`, tx.Amount.StringFixed(2), tx.Description),
		notification.NewMetadata(notification.EventRefund,
			notification.KeyTicketID, tk.ID,
			notification.KeyTransactionID, tx.ID,
		),
	)
	if usr, found := svc.payer(ctx, tk.UserID); found {
		body := fmt.Sprintf("Hi %s,\n\nYour refund of $%s for %q has been processed.\n\n%s\n\nThe %s team",
			usr.Name, tx.Amount.StringFixed(2), tx.Description, response, svc.from.Name)
		svc.mailTo(usr, "Refund processed "+tx.InvoiceID, body, &tx)
	}
	return tk, nil
}

// RejectRefund resolves the ticket without touching its transaction.
func (svc *Service) RejectRefund(ctx context.Context, ticketID, response string) (ticket.Ticket, error) {
	tk, err := svc.refundTicket(ctx, ticketID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if !tk.IsPending() {
		return tk, nil
	}

	if response = core.CleanString(response); response == "" {
		response = DefaultRejectionResponse
	}
	if tk, err = svc.Tickets.Resolve(ctx, tk.ID, response); err != nil {
		return ticket.Ticket{}, err
	}
	svc.notify(ctx, tk.UserID, notification.TypeInfo,
		fmt.Sprintf(`Your refund request was declined: %s`, response),
		notification.NewMetadata(notification.EventRefund,
			notification.KeyTicketID, tk.ID,
			notification.KeyTransactionID, tk.RelatedTransactionID.String,
		),
	)
	return tk, nil
}
