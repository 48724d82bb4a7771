package mirrorsvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
)

type closer interface{ Close() error }

// New builds the outbox selected by conf.Mirror.Backend.
// The returned close func flushes pending writes and releases the remote client.
func New(ctx context.Context, conf *core.Config, logger core.Logger) (core.Outbox, func(), error) {
	var (
		remote core.RemoteMirror
		err    error
	)
	switch conf.Mirror.Backend {
	case "", core.MirrorNone:
		return Nop{}, func() {}, nil
	case core.MirrorRedis:
		remote, err = NewRedisMirror(ctx, conf.Mirror)
	case core.MirrorGCS:
		remote, err = NewGCSMirror(ctx, conf.Mirror)
	default:
		return nil, nil, errors.Errorf("unknown mirror backend %q", conf.Mirror.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	pub := NewPublisher(remote, logger, OptionsFromConfig(conf.Mirror))
	return pub, func() {
		pub.Flush()
		if c, ok := remote.(closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("mirror: closing remote", err)
			}
		}
	}, nil
}
