package mirrorsvc

import (
	"context"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/sethvargo/go-retry"
	"github.com/sourcegraph/conc"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

// Nop discards every write. Used when no remote is configured.
type Nop struct{}

var _ core.Outbox = Nop{}

func (Nop) Put(string, string, interface{}) {}
func (Nop) Delete(string, string)           {}

type Options struct {
	MaxRetries  uint64
	BaseBackoff time.Duration
	Timeout     time.Duration // per write, retries included
	Workers     int           // max concurrent remote writes
}

func OptionsFromConfig(conf core.MirrorConfig) Options {
	return Options{
		MaxRetries:  conf.MaxRetries,
		BaseBackoff: conf.BaseBackoff,
		Timeout:     conf.Timeout,
		Workers:     conf.Workers,
	}
}

type write struct {
	op  string
	seq uint64
	run func(ctx context.Context) error
}

// keyState orders the writes of one collection/id: a single runner
// delivers them, and a newer write replaces the one still queued.
type keyState struct {
	seq     uint64
	next    *write
	running bool
}

// Publisher delivers local writes to a remote mirror in the background.
// Writes to the same entity land in call order. Failures are retried with
// exponential backoff, then logged and dropped. A write replaced by a newer
// one for the same entity stops retrying.
type Publisher struct {
	remote core.RemoteMirror
	logger core.Logger
	opts   Options
	sem    chan struct{}
	wg     conc.WaitGroup

	mu   sync.Mutex
	keys map[string]*keyState
}

var _ core.Outbox = (*Publisher)(nil)

func NewPublisher(remote core.RemoteMirror, logger core.Logger, opts Options) *Publisher {
	vala.BeginValidation().Validate(
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 100 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Publisher{
		remote: remote,
		logger: logger,
		opts:   opts,
		sem:    make(chan struct{}, opts.Workers),
		keys:   make(map[string]*keyState),
	}
}

// Put clones entity right away, so later changes by the caller are not mirrored.
func (p *Publisher) Put(collection, id string, entity interface{}) {
	if p.remote == nil {
		return
	}
	doc, err := kv.Document(entity)
	if err != nil {
		p.logger.Warn("mirror: cloning "+collection+"/"+id, err)
		return
	}
	p.dispatch("put", collection, id, func(ctx context.Context) error {
		return p.remote.Put(ctx, collection, id, doc)
	})
}

func (p *Publisher) Delete(collection, id string) {
	if p.remote == nil {
		return
	}
	p.dispatch("delete", collection, id, func(ctx context.Context) error {
		return p.remote.Delete(ctx, collection, id)
	})
}

func (p *Publisher) dispatch(op, collection, id string, run func(ctx context.Context) error) {
	key := collection + "/" + id

	p.mu.Lock()
	st, ok := p.keys[key]
	if !ok {
		st = new(keyState)
		p.keys[key] = st
	}
	st.seq++
	st.next = &write{op: op, seq: st.seq, run: run}
	if st.running {
		p.mu.Unlock()
		return
	}
	st.running = true
	p.mu.Unlock()

	p.wg.Go(func() { p.drain(key, st) })
}

// drain delivers the writes queued for key until none is left.
func (p *Publisher) drain(key string, st *keyState) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			st.running = false
			delete(p.keys, key)
			p.mu.Unlock()
			panic(r)
		}
	}()

	for {
		p.mu.Lock()
		w := st.next
		if w == nil {
			st.running = false
			delete(p.keys, key)
			p.mu.Unlock()
			return
		}
		st.next = nil
		p.mu.Unlock()

		p.deliver(key, st, w)
	}
}

func (p *Publisher) superseded(st *keyState, w *write) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return st.seq != w.seq
}

func (p *Publisher) deliver(key string, st *keyState, w *write) {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(p.opts.MaxRetries, retry.NewExponential(p.opts.BaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if p.superseded(st, w) {
			return nil
		}
		if err := w.run(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		p.logger.Warn("mirror: "+w.op+" "+key+" failed", err)
	}
}

// Flush waits for every in-flight write.
func (p *Publisher) Flush() {
	if r := p.wg.WaitAndRecover(); r != nil {
		p.logger.Error("mirror: writer panicked", r.AsError())
	}
}
