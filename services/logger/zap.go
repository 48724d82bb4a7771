package logsvc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/owais185-web/LuminaLMSPush/core"
)

// ZapLogger logs structured entries through zap.
type ZapLogger struct {
	s *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(debug bool) (*ZapLogger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if debug {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &ZapLogger{s: base.Sugar()}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{s: zap.NewNop().Sugar()}
}

func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{s: l.s.With(keysAndValues...)}
}

func (l *ZapLogger) Sync() error { return l.s.Sync() }

// fields turns loosely typed args into zap key/value pairs.
func (l *ZapLogger) fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		switch a := arg.(type) {
		case error:
			kvs = append(kvs, "error", a.Error())
		case map[string]interface{}:
			for k, v := range a {
				kvs = append(kvs, k, v)
			}
		case core.Actor:
			id, name, email := a.ActorInfo()
			kvs = append(kvs, "actor.id", id, "actor.name", name, "actor.email", email)
		default:
			kvs = append(kvs, fmt.Sprintf("arg%d", i), a)
		}
	}
	return kvs
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.s.Debugw(msg, l.fields(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.s.Infow(msg, l.fields(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.s.Warnw(msg, l.fields(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.s.Errorw(msg, l.fields(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.s.Fatalw(msg, l.fields(args)...) }

// New picks the logger for conf: zap, reporting to rollbar when a token is configured.
func New(conf *core.Config) (core.Logger, error) {
	local, err := NewZapLogger(conf.Debug)
	if err != nil {
		return nil, err
	}
	local = local.With("app", conf.AppName, "env", conf.Env)
	if conf.RollbarToken != "" {
		return NewRollbarLogger(local, conf), nil
	}
	return local, nil
}
