package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_transactions"
	Collection = "transactions"

	IDPrefix      = "txn_"
	InvoicePrefix = "INV-"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrNotRefundable = errors.New("only succeeded transactions can be refunded")
	ErrInvoiceExists = errors.New("invoice id already used")
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId" validate:"required"`
	UserName      string          `json:"userName"`
	Description   string          `json:"description" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gte=0"`
	Status        Status          `json:"status" validate:"oneof=succeeded pending failed refunded"`
	Date          time.Time       `json:"date"`
	InvoiceID     string          `json:"invoiceId" validate:"required"`
	PaymentMethod string          `json:"paymentMethod"`
}

// NewID returns a fresh transaction id.
func NewID() string {
	return IDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewInvoiceID returns a candidate invoice id; callers check it against InvoiceExists.
func NewInvoiceID() string {
	return InvoicePrefix + strings.ToUpper(uuid.NewString()[:8])
}

type Repository struct {
	coll    *kv.Collection[Transaction]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Transaction) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func indexOf(txs []Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func (repo *Repository) GetAll(ctx context.Context) []Transaction {
	return repo.coll.Load(ctx)
}

func (repo *Repository) GetByUser(ctx context.Context, userID string) []Transaction {
	txs := make([]Transaction, 0)
	for _, tx := range repo.coll.Load(ctx) {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	return txs
}

func (repo *Repository) FindByID(ctx context.Context, id string) (Transaction, error) {
	txs := repo.coll.Load(ctx)
	if idx := indexOf(txs, id); idx >= 0 {
		return txs[idx], nil
	}
	return Transaction{}, ErrNotFound
}

func (repo *Repository) InvoiceExists(ctx context.Context, invoiceID string) bool {
	for _, tx := range repo.coll.Load(ctx) {
		if tx.InvoiceID == invoiceID {
			return true
		}
	}
	return false
}

// Add prepends tx, newest first. Invoice ids are unique.
func (repo *Repository) Add(ctx context.Context, tx Transaction) (Transaction, error) {
	if tx.ID == "" {
		tx.ID = NewID()
	}
	if tx.Date.IsZero() {
		tx.Date = repo.nowFunc()
	}
	if tx.Status == "" {
		tx.Status = StatusPending
	}
	if err := core.CheckStruct(tx); err != nil {
		return Transaction{}, err
	}

	txs := repo.coll.Load(ctx)
	for _, existing := range txs {
		if existing.ID == tx.ID {
			return Transaction{}, errors.Errorf("transaction %s already exists", tx.ID)
		}
		if existing.InvoiceID == tx.InvoiceID {
			return Transaction{}, errors.Wrap(ErrInvoiceExists, tx.InvoiceID)
		}
	}
	repo.coll.Save(ctx, append([]Transaction{tx}, txs...))
	repo.outbox.Put(Collection, tx.ID, tx)
	return tx, nil
}

// Refund moves a succeeded transaction to refunded.
// Refunding an already refunded transaction is a no-op.
func (repo *Repository) Refund(ctx context.Context, id string) (Transaction, error) {
	txs := repo.coll.Load(ctx)
	idx := indexOf(txs, id)
	if idx < 0 {
		return Transaction{}, ErrNotFound
	}

	tx := txs[idx]
	switch tx.Status {
	case StatusRefunded:
		return tx, nil
	case StatusSucceeded:
	default:
		return tx, errors.Wrapf(ErrNotRefundable, "transaction %s is %s", tx.ID, tx.Status)
	}

	tx.Status = StatusRefunded
	txs[idx] = tx
	repo.coll.Save(ctx, txs)
	repo.outbox.Put(Collection, tx.ID, tx)
	return tx, nil
}
