package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/tests"
)

func newRepo(t *testing.T, seed ...Ticket) (*Repository, *testutil.Outbox, *testutil.Clock) {
	t.Helper()
	store, _, _ := testutil.NewStore(t)
	outbox := new(testutil.Outbox)
	clock := testutil.NewClock(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))
	repo := NewRepository(store, outbox, seed)
	repo.nowFunc = clock.Now
	return repo, outbox, clock
}

func technical(id, userID string) Ticket {
	return Ticket{ID: id, UserID: userID, Subject: "Video won't play", Category: CategoryTechnical, Status: StatusOpen, Priority: PriorityHigh}
}

func TestRepository_Add(t *testing.T) {
	ctx := context.Background()
	repo, outbox, clock := newRepo(t, technical("t1", "u3"))

	tests := []struct {
		name      string
		ticket    Ticket
		wantField string
	}{
		{name: "defaults", ticket: Ticket{UserID: "u3", Subject: " Certificate ", Category: CategoryContent}},
		{name: "refund with transaction", ticket: Ticket{UserID: "u3", Subject: "Refund", Category: CategoryRefund, RelatedTransactionID: null.StringFrom("tx_1")}},
		{name: "refund without transaction", ticket: Ticket{UserID: "u3", Subject: "Refund", Category: CategoryRefund}, wantField: "relatedTransactionId"},
		{name: "unknown category", ticket: Ticket{UserID: "u3", Subject: "Hi", Category: "Gossip"}, wantField: "category"},
		{name: "bad priority", ticket: Ticket{UserID: "u3", Subject: "Hi", Category: CategoryOther, Priority: "urgent"}, wantField: "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := repo.Add(ctx, tt.ticket)
			if tt.wantField != "" {
				fields, ok := core.FieldErrors(err)
				require.True(t, ok, "want a validation error, got %v", err)
				assert.Equal(t, tt.wantField, fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tk.ID)
			assert.Equal(t, StatusOpen, tk.Status)
			assert.Equal(t, PriorityMedium, tk.Priority)
			assert.True(t, clock.Now().Equal(tk.CreatedAt))
		})
	}

	tickets := repo.GetAll(ctx)
	require.Len(t, tickets, 3)
	assert.Equal(t, CategoryRefund, tickets[0].Category, "tickets are prepended")
	assert.Equal(t, "Certificate", tickets[1].Subject)
	assert.Len(t, outbox.Calls(), 2)
}

func TestRepository_UpdateAndAnswer(t *testing.T) {
	ctx := context.Background()
	refund := Ticket{ID: "t2", UserID: "u3", Subject: "Refund Request: $15.00", Category: CategoryRefund, Status: StatusOpen, Priority: PriorityHigh, RelatedTransactionID: null.StringFrom("tx_3")}
	repo, outbox, clock := newRepo(t, technical("t1", "u3"), refund)

	clock.Advance(time.Hour)
	tk, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	tk.Status = StatusInProgress
	tk, err = repo.Update(ctx, tk)
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(tk.UpdatedAt))

	resolved, err := repo.Resolve(ctx, "t1", " Cleared your cache. ")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)
	assert.Equal(t, null.StringFrom("Cleared your cache."), resolved.AdminResponse)

	closed, err := repo.Close(ctx, "t2", "Refund approved and processed.")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)

	stored, _ := repo.FindByID(ctx, "t2")
	assert.Equal(t, "Refund approved and processed.", stored.AdminResponse.String)

	_, err = repo.Close(ctx, "t9", "nothing")
	assert.Equal(t, ErrNotFound, err)
	_, err = repo.Update(ctx, technical("t9", "u3"))
	assert.Equal(t, ErrNotFound, err)

	assert.Len(t, outbox.Calls(), 3)
}

func TestRepository_Queries(t *testing.T) {
	ctx := context.Background()
	pending := Ticket{ID: "t2", UserID: "u3", Subject: "Refund", Category: CategoryRefund, Status: StatusOpen, Priority: PriorityHigh, RelatedTransactionID: null.StringFrom("tx_1")}
	done := pending
	done.ID, done.Status = "t3", StatusResolved
	repo, _, _ := newRepo(t, technical("t1", "u4"), pending, done)

	var ids []string
	for _, tk := range repo.PendingRefunds(ctx) {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"t2"}, ids)
	assert.Len(t, repo.ForUser(ctx, "u3"), 2)
	assert.Empty(t, repo.ForUser(ctx, "u9"))
}
