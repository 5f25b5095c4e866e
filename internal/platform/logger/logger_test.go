package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"share_token", "AbCdEf123456",
		"config_id", "c-1",
		"Admin_Password", "hunter2",
		"dangling",
	})
	assert.Equal(t, []interface{}{
		"share_token", "[REDACTED]",
		"config_id", "c-1",
		"Admin_Password", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", 1)
	l.Sync()
}
