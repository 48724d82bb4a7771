package ticket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_tickets"
	Collection = "tickets"
)

var ErrNotFound = errors.New("ticket not found")

type Repository struct {
	coll    *kv.Collection[Ticket]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Ticket) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func indexOf(tickets []Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (repo *Repository) GetAll(ctx context.Context) []Ticket {
	return repo.coll.Load(ctx)
}

func (repo *Repository) FindByID(ctx context.Context, id string) (Ticket, error) {
	tickets := repo.coll.Load(ctx)
	if idx := indexOf(tickets, id); idx >= 0 {
		return tickets[idx], nil
	}
	return Ticket{}, ErrNotFound
}

func (repo *Repository) filter(ctx context.Context, keep func(Ticket) bool) []Ticket {
	tickets := make([]Ticket, 0)
	for _, t := range repo.coll.Load(ctx) {
		if keep(t) {
			tickets = append(tickets, t)
		}
	}
	return tickets
}

func (repo *Repository) ForUser(ctx context.Context, userID string) []Ticket {
	return repo.filter(ctx, func(t Ticket) bool { return t.UserID == userID })
}

// PendingRefunds returns the refund tickets awaiting an admin decision.
func (repo *Repository) PendingRefunds(ctx context.Context) []Ticket {
	return repo.filter(ctx, func(t Ticket) bool { return t.IsRefund() && t.IsPending() })
}

// Add prepends t, newest first.
func (repo *Repository) Add(ctx context.Context, t Ticket) (Ticket, error) {
	now := repo.nowFunc()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.Subject = core.CleanString(t.Subject)
	if err := t.Validate(); err != nil {
		return Ticket{}, err
	}

	tickets := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append([]Ticket{t}, tickets...))
	repo.outbox.Put(Collection, t.ID, t)
	return t, nil
}

// Update replaces the stored ticket having t.ID.
func (repo *Repository) Update(ctx context.Context, t Ticket) (Ticket, error) {
	t.UpdatedAt = repo.nowFunc()
	if err := t.Validate(); err != nil {
		return Ticket{}, err
	}

	tickets := repo.coll.Load(ctx)
	idx := indexOf(tickets, t.ID)
	if idx < 0 {
		return Ticket{}, ErrNotFound
	}
	tickets[idx] = t
	repo.coll.Save(ctx, tickets)
	repo.outbox.Put(Collection, t.ID, t)
	return t, nil
}

func (repo *Repository) answer(ctx context.Context, id string, status Status, response string) (Ticket, error) {
	t, err := repo.FindByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	t.Status = status
	t.AdminResponse = null.StringFrom(core.CleanString(response))
	return repo.Update(ctx, t)
}

// Resolve marks the ticket resolved and records the admin response.
func (repo *Repository) Resolve(ctx context.Context, id, response string) (Ticket, error) {
	return repo.answer(ctx, id, StatusResolved, response)
}

// Close marks the ticket closed and records the admin response.
func (repo *Repository) Close(ctx context.Context, id, response string) (Ticket, error) {
	return repo.answer(ctx, id, StatusClosed, response)
}
