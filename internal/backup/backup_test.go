package backup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedata/config"
	"sitedata/notify"
	"sitedata/store"
)

// recordingBackend remembers every key written, so the test can find the
// dated backup keys.
type recordingBackend struct {
	*store.MemoryBackend
	keys []string
}

func (r *recordingBackend) Write(ctx context.Context, name string, data []byte) error {
	r.keys = append(r.keys, name)
	return r.MemoryBackend.Write(ctx, name, data)
}

func TestRunOnceCopiesDocuments(t *testing.T) {
	cfg := &config.Config{Names: []string{"events", "reflections"}}
	backend := &recordingBackend{MemoryBackend: store.NewMemoryBackend()}
	notifier := notify.New()
	client := store.NewClient(backend, notifier)
	ctx := context.Background()

	require.NoError(t, client.Save(ctx, "events", `[{"id":"e1"}]`))

	// Subscribed after the seed save, so anything arriving from here on
	// would come from the backup run.
	events, cancel := notifier.Subscribe()
	defer cancel()

	s := NewScheduler(backend, client, cfg)
	s.RunOnce()

	var backupKey string
	for _, key := range backend.keys {
		if strings.HasPrefix(key, "backups/events-") {
			backupKey = key
		}
		// The never-written document must not be backed up as [].
		assert.False(t, strings.HasPrefix(key, "backups/reflections-"))
	}
	require.NotEmpty(t, backupKey, "expected a dated backup of events")

	data, err := backend.Read(ctx, backupKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"e1"}]`, string(data))

	// Backups bypass the notifier entirely.
	select {
	case ev := <-events:
		t.Fatalf("backups must not announce, got %+v", ev)
	default:
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := &config.Config{Names: []string{"events"}, BackupSchedule: "not a cron spec"}
	backend := store.NewMemoryBackend()
	client := store.NewClient(backend, nil)

	s := NewScheduler(backend, client, cfg)
	assert.Error(t, s.Start())
}

func TestStartWithoutScheduleIsDisabled(t *testing.T) {
	cfg := &config.Config{Names: []string{"events"}}
	backend := store.NewMemoryBackend()
	client := store.NewClient(backend, nil)

	s := NewScheduler(backend, client, cfg)
	require.NoError(t, s.Start())
	s.Stop() // safe with no cron running
}
