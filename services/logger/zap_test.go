package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/owais185-web/LuminaLMSPush/core"
)

type actor struct{}

func (actor) ActorInfo() (string, string, string) { return "u1", "Admin Alice", "admin@lumina.com" }

func TestZapLogger_fields(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	l := &ZapLogger{s: zap.New(obs).Sugar()}

	l.Error("kv: saving lumina_users", errors.New("disk full"), map[string]interface{}{"key": "lumina_users"}, actor{}, 42)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "disk full", ctx["error"])
		assert.Equal(t, "lumina_users", ctx["key"])
		assert.Equal(t, "u1", ctx["actor.id"])
		assert.EqualValues(t, 42, ctx["arg3"])
	}
}

func TestNew(t *testing.T) {
	l, err := New(&core.Config{Debug: true})
	assert.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)
}

func TestRollbarLogger_echoesLocally(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	local := &ZapLogger{s: zap.New(obs).Sugar()}
	l := NewRollbarLogger(local, &core.Config{RollbarToken: "token", Env: "TEST", TestMode: true})

	l.Warn("mirror: closing remote", errors.New("broken pipe"), actor{})
	l.Info("admin: seeded")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "mirror: closing remote", entries[0].Message)
		assert.Equal(t, "broken pipe", entries[0].ContextMap()["error"])
		assert.Equal(t, "admin@lumina.com", entries[0].ContextMap()["actor.email"])
		assert.Equal(t, zap.InfoLevel, entries[1].Level)
	}

	rl, err := New(&core.Config{RollbarToken: "token", TestMode: true})
	assert.NoError(t, err)
	assert.IsType(t, &RollbarLogger{}, rl)
}
