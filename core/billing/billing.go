// Package billing runs the financial workflows: coupons, payments, paid
// enrollment, refunds through support tickets, invoices and reports.
package billing

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/coupon"
	"github.com/owais185-web/LuminaLMSPush/core/course"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/ticket"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
	"github.com/owais185-web/LuminaLMSPush/core/user"
)

const (
	unknownUserName  = "Unknown"
	maxInvoiceTries  = 5
	cardMethodPrefix = "Visa "
)

var (
	ErrCardDeclined  = errors.New("card declined by bank, please try another method")
	ErrInvalidCoupon = errors.New("invalid coupon code")
	ErrNotOwner      = errors.New("transaction belongs to another user")
	ErrNotRefundable = transaction.ErrNotRefundable
	ErrNotRefundTkt  = errors.New("ticket is not a refund request")
)

// Charge is what the gateway bills.
type Charge struct {
	Amount      decimal.Decimal
	Description string
	CardLast4   string
}

// Gateway is a payment provider. A refused charge is reported as ErrCardDeclined.
type Gateway interface {
	Charge(ctx context.Context, charge Charge) error
}

type Deps struct {
	Users         *user.Repository
	Courses       *course.Repository
	Transactions  *transaction.Repository
	Coupons       *coupon.Repository
	Tickets       *ticket.Repository
	Notifications *notification.Repository
	Gateway       Gateway
	Email         core.EmailService
	Logger        core.Logger
}

type Service struct {
	Deps
	adminID       string
	defaultCard   string
	couponLatency time.Duration
	from          mail.Address
}

func NewService(deps Deps, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Users, "Users"),
		vala.IsNotNil(deps.Courses, "Courses"),
		vala.IsNotNil(deps.Transactions, "Transactions"),
		vala.IsNotNil(deps.Coupons, "Coupons"),
		vala.IsNotNil(deps.Tickets, "Tickets"),
		vala.IsNotNil(deps.Notifications, "Notifications"),
		vala.IsNotNil(deps.Gateway, "Gateway"),
		vala.IsNotNil(deps.Email, "Email"),
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	card := conf.Payment.DefaultCardLast4
	if card == "" {
		card = "4242"
	}
	return &Service{
		Deps:          deps,
		adminID:       conf.AdminRecipientID,
		defaultCard:   card,
		couponLatency: conf.Payment.CouponLatency,
		from:          conf.Email.DefaultFromEmail(),
	}
}

// ApplyDiscount takes percent off amount, rounded to cents and never below zero.
func ApplyDiscount(amount decimal.Decimal, percent int) decimal.Decimal {
	off := amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
	discounted := amount.Sub(off)
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted.Round(2)
}

// ValidateCoupon looks code up after the provider latency.
func (svc *Service) ValidateCoupon(ctx context.Context, code string) (coupon.Coupon, error) {
	if err := core.Sleep(ctx, svc.couponLatency); err != nil {
		return coupon.Coupon{}, err
	}
	c, err := svc.Coupons.Find(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return coupon.Coupon{}, ErrInvalidCoupon
		}
		return coupon.Coupon{}, err
	}
	return c, nil
}

type PaymentRequest struct {
	UserID      string          `json:"userId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	Description string          `json:"description" validate:"required"`
	CouponCode  string          `json:"couponCode"`
}

// payer returns the user paying, or a stand-in named "Unknown".
func (svc *Service) payer(ctx context.Context, userID string) (user.User, bool) {
	usr, err := svc.Users.FindByID(ctx, userID)
	if err != nil {
		return user.User{ID: userID, Name: unknownUserName}, false
	}
	return usr, true
}

func (svc *Service) newInvoiceID(ctx context.Context) (string, error) {
	for i := 0; i < maxInvoiceTries; i++ {
		id := transaction.NewInvoiceID()
		if !svc.Transactions.InvoiceExists(ctx, id) {
			return id, nil
		}
	}
	return "", transaction.ErrInvoiceExists
}

// ProcessPayment charges the user and records the succeeded transaction.
// A declined charge returns ErrCardDeclined and records nothing.
func (svc *Service) ProcessPayment(ctx context.Context, req PaymentRequest) (transaction.Transaction, error) {
	req.Description = core.CleanString(req.Description)
	if err := core.CheckStruct(req); err != nil {
		return transaction.Transaction{}, err
	}

	amount := req.Amount
	if code := core.CleanString(req.CouponCode); code != "" {
		c, err := svc.ValidateCoupon(ctx, code)
		if err != nil {
			return transaction.Transaction{}, err
		}
		amount = ApplyDiscount(amount, c.DiscountPercent)
	}

	usr, found := svc.payer(ctx, req.UserID)
	card := usr.Billing.SavedCardLast4
	if card == "" {
		card = svc.defaultCard
	}

	if err := svc.Gateway.Charge(ctx, Charge{Amount: amount, Description: req.Description, CardLast4: card}); err != nil {
		return transaction.Transaction{}, err
	}

	invoiceID, err := svc.newInvoiceID(ctx)
	if err != nil {
		return transaction.Transaction{}, err
	}
	tx, err := svc.Transactions.Add(ctx, transaction.Transaction{
		ID:            transaction.NewID(),
		UserID:        req.UserID,
		UserName:      usr.Name,
		Description:   req.Description,
		Amount:        amount,
		Status:        transaction.StatusSucceeded,
		InvoiceID:     invoiceID,
		PaymentMethod: cardMethodPrefix + card,
	})
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "recording transaction")
	}

	svc.notify(ctx, tx.UserID, notification.TypeSuccess,
		fmt.Sprintf(`Payment of $%s for "%s" succeeded.`, tx.Amount.StringFixed(2), tx.Description),
		notification.NewMetadata(notification.EventPayment, notification.KeyTransactionID, tx.ID),
	)
	if found {
		svc.sendReceipt(usr, tx)
	}
	return tx, nil
}

type Enrollment struct {
	User        user.User
	Course      course.Course
	Transaction *transaction.Transaction // nil for free courses and existing enrollments
}

// Enroll gives userID access to courseID, charging for paid courses first.
// Enrolling twice neither charges nor changes anything.
func (svc *Service) Enroll(ctx context.Context, userID, courseID, couponCode string) (Enrollment, error) {
	usr, err := svc.Users.FindByID(ctx, userID)
	if err != nil {
		return Enrollment{}, err
	}
	c, err := svc.Courses.FindByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if usr.IsEnrolled(courseID) {
		return Enrollment{User: usr, Course: c}, nil
	}

	enr := Enrollment{}
	paid := decimal.Zero
	if !c.IsFree() {
		tx, err := svc.ProcessPayment(ctx, PaymentRequest{UserID: userID, Amount: c.Price, Description: c.Title, CouponCode: couponCode})
		if err != nil {
			return Enrollment{}, err
		}
		enr.Transaction = &tx
		paid = tx.Amount
	}

	if enr.User, err = svc.Users.Enroll(ctx, userID, courseID); err != nil {
		return Enrollment{}, err
	}
	if enr.Course, err = svc.Courses.RecordSale(ctx, courseID, paid); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *Service) notify(ctx context.Context, userID string, typ notification.Type, msg string, md notification.Metadata) {
	if _, err := svc.Notifications.Notify(ctx, userID, typ, msg, md); err != nil {
		svc.Logger.Error("billing: notifying "+userID, err)
	}
}

func (svc *Service) mailTo(usr user.User, subject, body string, tx *transaction.Transaction) {
	if usr.Email == "" {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: subject,
		BodyStr: body,
	}
	if tx != nil {
		invoice, err := Invoice(*tx)
		if err != nil {
			svc.Logger.Error("billing: rendering invoice "+tx.InvoiceID, err)
		} else if err := msg.Attach(strings.NewReader(invoice), tx.InvoiceID+".txt", "text/plain"); err != nil {
			svc.Logger.Error("billing: attaching invoice "+tx.InvoiceID, err)
		}
	}
	svc.Email.SendMessages(msg)
}

func (svc *Service) sendReceipt(usr user.User, tx transaction.Transaction) {
	body := fmt.Sprintf("Hi %s,\n\nWe received your payment of $%s for %q.\nYour invoice %s is attached.\n\nThe %s team",
		usr.Name, tx.Amount.StringFixed(2), tx.Description, tx.InvoiceID, svc.from.Name)
	svc.mailTo(usr, "Payment receipt "+tx.InvoiceID, body, &tx)
}
