package mirrorsvc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/owais185-web/LuminaLMSPush/core"
)

// RedisMirror keeps one hash per collection: field = entity id, value = JSON document.
type RedisMirror struct {
	rdb    *redis.Client
	prefix string
}

var _ core.RemoteMirror = (*RedisMirror)(nil)

func NewRedisMirror(ctx context.Context, conf core.MirrorConfig) (*RedisMirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisMirror{rdb: rdb, prefix: conf.RedisPrefix}, nil
}

func (m *RedisMirror) key(collection string) string { return m.prefix + collection }

func (m *RedisMirror) Put(ctx context.Context, collection, id string, doc map[string]interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	return errors.Wrap(m.rdb.HSet(ctx, m.key(collection), id, data).Err(), "redis HSET")
}

func (m *RedisMirror) Delete(ctx context.Context, collection, id string) error {
	return errors.Wrap(m.rdb.HDel(ctx, m.key(collection), id).Err(), "redis HDEL")
}

func (m *RedisMirror) Close() error { return m.rdb.Close() }
