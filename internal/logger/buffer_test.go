package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogBufferConcurrentAccess(t *testing.T) {
	spillFile := filepath.Join(t.TempDir(), "spill.log")

	buffer, err := NewLogBuffer(100, spillFile, zap.NewNop())
	require.NoError(t, err)
	defer buffer.Close()

	done := buffer.StartPeriodicFlush(50 * time.Millisecond)
	defer close(done)

	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				fields := map[string]interface{}{"goroutine": id, "iteration": j}
				assert.NoError(t, buffer.Add("info", fmt.Sprintf("log %d/%d", id, j), fields))
			}
		}(i)
	}

	readersDone := make(chan struct{})
	go func() {
		defer close(readersDone)
		for i := 0; i < 20; i++ {
			_ = buffer.GetRecentLogs(10)
			_, _ = buffer.GetStats()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	wg.Wait()
	<-readersDone
	require.NoError(t, buffer.Flush())

	total, spilled := buffer.GetStats()
	assert.Equal(t, uint64(numGoroutines*logsPerGoroutine), total)
	assert.Equal(t, total-100, spilled)

	_, err = os.Stat(spillFile)
	assert.NoError(t, err)
}

func TestLogBufferRingBufferBehavior(t *testing.T) {
	buffer, err := NewLogBuffer(5, "", nil)
	require.NoError(t, err)
	defer buffer.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, buffer.Add("info", fmt.Sprintf("Log %d", i), nil))
	}

	logs := buffer.GetRecentLogs(10)
	require.Len(t, logs, 5)
	assert.Equal(t, "Log 5", logs[0].Message)
	assert.Equal(t, "Log 9", logs[4].Message)

	last2 := buffer.GetRecentLogs(2)
	require.Len(t, last2, 2)
	assert.Equal(t, "Log 8", last2[0].Message)
	assert.Equal(t, "Log 9", last2[1].Message)
}

func TestLogBufferBeforeWrap(t *testing.T) {
	buffer, err := NewLogBuffer(5, "", nil)
	require.NoError(t, err)

	assert.Empty(t, buffer.GetRecentLogs(0))
	require.NoError(t, buffer.Add("warn", "one", nil))
	require.NoError(t, buffer.Add("info", "two", nil))

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 2)
	assert.Equal(t, "one", logs[0].Message)
	assert.Equal(t, "warn", logs[0].Level)
}

func TestLogBufferRejectsZeroSize(t *testing.T) {
	_, err := NewLogBuffer(0, "", nil)
	assert.Error(t, err)
}

func TestLoggerTeesIntoBuffer(t *testing.T) {
	buffer, err := NewLogBuffer(10, "", nil)
	require.NoError(t, err)

	log, closeFn, err := New(Options{Buffer: buffer})
	require.NoError(t, err)

	log.Named("pricing").Info("Price updated", zap.String("symbol", "SOL"), zap.Float64("price", 98.45))
	log.Debug("hidden at info level")
	require.NoError(t, closeFn())

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 1)
	assert.Equal(t, "Price updated", logs[0].Message)
	assert.Equal(t, "info", logs[0].Level)
	assert.Equal(t, "SOL", logs[0].Fields["symbol"])
	assert.Equal(t, 98.45, logs[0].Fields["price"])
	assert.Equal(t, "pricing", logs[0].Fields["logger"])
	assert.False(t, logs[0].Timestamp.IsZero())
}

func TestLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dex2k.log")
	opts := DefaultOptions()
	opts.File = path
	opts.Debug = true

	log, closeFn, err := New(opts)
	require.NoError(t, err)
	log.Debug("Swap recorded", zap.String("id", "abc"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Swap recorded"`)
	assert.Contains(t, string(data), `"id":"abc"`)
}

func TestLoggerWithoutSinksIsNop(t *testing.T) {
	log, closeFn, err := New(Options{})
	require.NoError(t, err)
	log.Info("nothing")
	assert.NoError(t, closeFn())
}
