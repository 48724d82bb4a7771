package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/database/dummy"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

// NewStore returns an isolated store over an in-memory backend.
func NewStore(t *testing.T) (*kv.Store, *dummydb.DB, *Logger) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := new(Logger)
	return kv.NewStore(db, logger), db, logger
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every entry instead of printing it.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]LogEntry, 0)
	for _, e := range l.entries {
		if e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

type OutboxCall struct {
	Op         string // put | delete
	Collection string
	ID         string
	Entity     interface{}
}

// Outbox records mirrored writes synchronously.
type Outbox struct {
	mu    sync.Mutex
	calls []OutboxCall
}

var _ core.Outbox = (*Outbox)(nil)

func (o *Outbox) Put(collection, id string, entity interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, OutboxCall{Op: "put", Collection: collection, ID: id, Entity: entity})
}

func (o *Outbox) Delete(collection, id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, OutboxCall{Op: "delete", Collection: collection, ID: id})
}

func (o *Outbox) Calls() []OutboxCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]OutboxCall(nil), o.calls...)
}

// Clock is a manually driven clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Hours returns a duration of h hours, h may be fractional.
func Hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
