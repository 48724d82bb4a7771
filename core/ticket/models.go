package ticket

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
)

type Category string

const (
	CategoryTechnical Category = "Technical"
	CategoryBilling   Category = "Billing"
	CategoryContent   Category = "Content"
	CategoryOther     Category = "Other"
	CategoryRefund    Category = "Refund"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var errNoTransaction = errors.New("refund ticket without transaction")

type Ticket struct {
	ID                   string      `json:"id"`
	UserID               string      `json:"userId" validate:"required"`
	UserName             string      `json:"userName"`
	Subject              string      `json:"subject" validate:"required"`
	Category             Category    `json:"category" validate:"oneof=Technical Billing Content Other Refund"`
	Description          string      `json:"description"`
	Status               Status      `json:"status" validate:"oneof=open in_progress resolved closed"`
	Priority             Priority    `json:"priority" validate:"oneof=low medium high"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
	RelatedTransactionID null.String `json:"relatedTransactionId"`
	AdminResponse        null.String `json:"adminResponse"`
}

func (t Ticket) IsRefund() bool { return t.Category == CategoryRefund }

// IsPending reports whether the ticket still awaits an admin.
func (t Ticket) IsPending() bool { return t.Status == StatusOpen || t.Status == StatusInProgress }

// Validate checks the ticket fields, and that a refund ticket names its transaction.
func (t Ticket) Validate() error {
	if err := core.CheckStruct(t); err != nil {
		return err
	}
	if t.IsRefund() && (!t.RelatedTransactionID.Valid || t.RelatedTransactionID.String == "") {
		return core.NewValidationError(errNoTransaction, core.FieldError{Field: "relatedTransactionId", Error: "this field is required"})
	}
	return nil
}
