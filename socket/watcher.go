package socket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"sitedata/notify"
	"sitedata/pkg/logger"
)

// Watcher dials a hub and feeds every announcement it receives into the
// local notifier, so subscriptions in this process reload when another
// process writes. Connection loss is retried with a flat backoff; during
// an outage subscribers fall back to their periodic refresh.
type Watcher struct {
	URL      string
	Notifier *notify.Notifier

	// optional, defaults to 5s
	Backoff time.Duration
}

func NewWatcher(url string, notifier *notify.Notifier) *Watcher {
	return &Watcher{URL: url, Notifier: notifier, Backoff: 5 * time.Second}
}

// Run keeps the watcher connected until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = 5 * time.Second
	}

	for {
		if err := w.listen(ctx); err != nil && ctx.Err() == nil {
			logger.Sugar.Warnf("Watcher disconnected from %s: %v", w.URL, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev notify.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Sugar.Errorf("Error unmarshalling announcement: %v", err)
			continue
		}
		w.Notifier.Deliver(ev)
	}
}
