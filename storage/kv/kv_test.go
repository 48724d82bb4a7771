package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owais185-web/LuminaLMSPush/storage/kv"
	"github.com/owais185-web/LuminaLMSPush/tests"
)

type event struct {
	ID       string                 `json:"id"`
	At       time.Time              `json:"at"`
	Label    string                 `json:"label"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Extra    interface{}            `json:"extra,omitempty"`
}

type failingBackend struct {
	getErr, putErr error
	puts           int
}

func (b *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, b.getErr
}

func (b *failingBackend) Put(context.Context, string, []byte) error {
	b.puts++
	return b.putErr
}

func TestCollection_LoadSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store, db, _ := testutil.NewStore(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	coll := kv.NewCollection(store, "lumina_events", []event{{ID: "e1", At: at}})

	got := coll.Load(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Contains(t, db.Keys(), "lumina_events")

	// the stored copy is used from now on, not the seed
	coll.Save(ctx, append(got, event{ID: "e2", At: at}))
	assert.Len(t, coll.Load(ctx), 2)
	assert.Len(t, kv.NewCollection(store, "lumina_events", []event{}).Load(ctx), 2)
}

func TestCollection_LoadNeverAliasesSeed(t *testing.T) {
	ctx := context.Background()
	seed := []event{{ID: "e1", Label: "seed"}}
	store := kv.NewStore(&failingBackend{getErr: errors.New("disk on fire")}, new(testutil.Logger))
	coll := kv.NewCollection(store, "lumina_events", seed)

	got := coll.Load(ctx)
	got[0].Label = "changed"
	assert.Equal(t, "seed", seed[0].Label)
}

func TestCollection_FailSoft(t *testing.T) {
	ctx := context.Background()
	seed := []event{{ID: "e1"}}

	tests := []struct {
		name      string
		backend   *failingBackend
		wantPuts  int
		wantError int
	}{
		{name: "read error falls back to seed without persisting", backend: &failingBackend{getErr: errors.New("boom")}, wantPuts: 0, wantError: 1},
		{name: "write error is swallowed", backend: &failingBackend{putErr: errors.New("boom")}, wantPuts: 1, wantError: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(testutil.Logger)
			coll := kv.NewCollection(kv.NewStore(tt.backend, logger), "lumina_events", seed)

			got := coll.Load(ctx)
			assert.Equal(t, seed, got)
			assert.Equal(t, tt.wantPuts, tt.backend.puts)
			assert.Len(t, logger.Entries("error"), tt.wantError)
		})
	}
}

func TestCollection_CorruptDocumentFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	store, db, logger := testutil.NewStore(t)
	require.NoError(t, db.Put(ctx, "lumina_events", []byte("{not json")))

	coll := kv.NewCollection(store, "lumina_events", []event{{ID: "seed"}})
	got := coll.Load(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "seed", got[0].ID)
	assert.Len(t, logger.Entries("error"), 1)
}

func TestCollection_DateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _, _ := testutil.NewStore(t)
	at := time.Date(2024, 5, 17, 14, 30, 15, 123000000, time.UTC)
	old := at.Add(-2 * time.Hour)

	coll := kv.NewCollection[event](store, "lumina_events", nil)
	coll.Save(ctx, []event{{
		ID:       "e1",
		At:       at,
		Label:    "2024-05-17T10:00:00Z", // typed strings stay strings
		Metadata: map[string]interface{}{"event": "reschedule", "oldTime": old, "nested": map[string]interface{}{"at": at}},
		Extra:    []interface{}{old, "plain"},
	}})

	got := coll.Load(ctx)
	require.Len(t, got, 1)
	e := got[0]
	assert.True(t, at.Equal(e.At))
	assert.Equal(t, "2024-05-17T10:00:00Z", e.Label)
	assert.Equal(t, "reschedule", e.Metadata["event"])

	oldTime, ok := e.Metadata["oldTime"].(time.Time)
	require.True(t, ok, "oldTime should be revived as time.Time, got %T", e.Metadata["oldTime"])
	assert.True(t, old.Equal(oldTime))

	nested, ok := e.Metadata["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.IsType(t, time.Time{}, nested["at"])

	extra, ok := e.Extra.([]interface{})
	require.True(t, ok)
	assert.IsType(t, time.Time{}, extra[0])
	assert.Equal(t, "plain", extra[1])
}

func TestReviveDates(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		revive bool
	}{
		{name: "utc", value: "2024-01-01T00:00:00Z", revive: true},
		{name: "millis", value: "2024-01-01T00:00:00.000Z", revive: true},
		{name: "offset", value: "2024-01-01T08:00:00+02:00", revive: true},
		{name: "date only", value: "2024-01-01", revive: false},
		{name: "unparseable", value: "2024-01-01Tlol", revive: false},
		{name: "text", value: "hello", revive: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := map[string]interface{}{"v": tt.value}
			kv.ReviveDates(m)
			_, isTime := m["v"].(time.Time)
			assert.Equal(t, tt.revive, isTime)
		})
	}
}

func TestDocument(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	src := event{ID: "e1", At: at, Metadata: map[string]interface{}{"k": "v"}}

	doc, err := kv.Document(src)
	require.NoError(t, err)
	assert.Equal(t, "e1", doc["id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", doc["at"])

	// the document is detached from its source
	src.Metadata["k"] = "changed"
	assert.Equal(t, "v", doc["metadata"].(map[string]interface{})["k"])

	_, err = kv.Document([]int{1})
	assert.Error(t, err)
}
