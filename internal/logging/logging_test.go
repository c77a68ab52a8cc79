package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, true, "info")

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 42)
	log.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.EqualValues(t, 42, record["user_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	gl := NewGormLogger(NewWithWriter(&buf, true, "debug"), logger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "query failed")
}
