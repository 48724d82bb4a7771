package logsvc

import (
	"sync"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
)

// RollbarLogger reports entries to Rollbar and echoes them to a local zap logger.
type RollbarLogger struct {
	local  *ZapLogger
	client *rollbar.Client
	mu     sync.Mutex // person is client-wide state
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(local *ZapLogger, conf *core.Config) *RollbarLogger {
	client := rollbar.New(conf.RollbarToken, conf.Env, conf.AppName, "", "")
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(!conf.TestMode)
	return &RollbarLogger{local: local, client: client}
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, core.Actor
func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var actorSet bool
	items := make([]interface{}, 0, len(args)+1)
	items = append(items, msg)
	for _, arg := range args {
		actor, ok := arg.(core.Actor)
		if !ok {
			items = append(items, arg)
			continue
		}
		if !actorSet { // only set one person
			id, name, email := actor.ActorInfo()
			l.client.SetPerson(id, name, email)
			actorSet = true
		}
	}
	if !actorSet {
		l.client.ClearPerson()
	}
	l.client.Log(level, items...)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.DEBUG, msg, args)
	l.local.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
	l.local.Info(msg, args...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
	l.local.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
	l.local.Error(msg, args...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.client.Wait()
	l.local.Fatal(msg, args...)
}
