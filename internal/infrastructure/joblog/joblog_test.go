package joblog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLine(t *testing.T) {
	t.Run("creates file and appends in order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cleanup_log.txt")
		appender := NewAppender(path)

		require.NoError(t, appender.AppendLine("2026-02-01 02:00:00 - Deleted customers: 2"))
		require.NoError(t, appender.AppendLine("2026-02-08 02:00:00 - Deleted customers: 0"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
		assert.Len(t, lines, 2)
		assert.Equal(t, "2026-02-01 02:00:00 - Deleted customers: 2", lines[0])
		assert.Equal(t, "2026-02-08 02:00:00 - Deleted customers: 0", lines[1])
	})

	t.Run("preserves existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "heartbeat_log.txt")
		require.NoError(t, os.WriteFile(path, []byte("01/02/2026-12:00:00 CRM is alive\n"), 0o644))

		appender := NewAppender(path)
		require.NoError(t, appender.AppendLine("01/02/2026-12:05:00 CRM is alive"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "01/02/2026-12:00:00 CRM is alive\n01/02/2026-12:05:00 CRM is alive\n", string(content))
	})

	t.Run("concurrent appends produce whole lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reminders_log.txt")
		appender := NewAppender(path)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, appender.AppendLine("2026-02-01 08:00:00 - Reminder: Order 7 for customer a@example.com"))
			}()
		}
		wg.Wait()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
		assert.Len(t, lines, 20)
		for _, line := range lines {
			assert.Equal(t, "2026-02-01 08:00:00 - Reminder: Order 7 for customer a@example.com", line)
		}
	})
}

func TestAppendf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report_log.txt")
	appender := NewAppender(path)

	ts := time.Date(2026, 2, 2, 6, 0, 0, 0, time.UTC).Format(TimestampLayout)
	require.NoError(t, appender.Appendf("%s - Report: %d customers, %d orders, %s revenue", ts, 12, 40, "1837.50"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-02 06:00:00 - Report: 12 customers, 40 orders, 1837.50 revenue\n", string(content))
}

func TestTimestampLayouts(t *testing.T) {
	at := time.Date(2026, 3, 4, 15, 6, 7, 0, time.UTC)
	assert.Equal(t, "2026-03-04 15:06:07", at.Format(TimestampLayout))
	assert.Equal(t, "04/03/2026-15:06:07", at.Format(HeartbeatLayout))
}
