package sqlxdb

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const table = "collections"

// Backend stores each collection document as one row of the collections table.
type Backend struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	nowFunc func() time.Time
}

var _ kv.Backend = (*Backend)(nil) // interface compliance check

func NewBackend(db *sqlx.DB) *Backend {
	format := sq.Question
	if db.DriverName() == "postgres" {
		format = sq.Dollar
	}
	return &Backend{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		nowFunc: time.Now,
	}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := b.builder.
		Select("data").
		From(table).
		Where(sq.Eq{"name": key}).
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(err, "building query")
	}

	var data string
	if err := b.db.GetContext(ctx, &data, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "selecting %s", key)
	}
	return []byte(data), true, nil
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	query, args, err := b.builder.
		Insert(table).
		Columns("name", "data", "updated_at").
		Values(key, string(data), b.nowFunc().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "upserting %s", key)
	}
	return nil
}

// Names lists the stored collection names.
func (b *Backend) Names(ctx context.Context) ([]string, error) {
	query, args, err := b.builder.Select("name").From(table).OrderBy("name").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	names := make([]string, 0)
	if err := b.db.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting names")
	}
	return names, nil
}
