package notify

import (
	"strconv"
	"sync"
	"time"

	"sitedata/pkg/logger"
)

const TypeUpdated = "updated"

// Event announces that a named document changed. TS carries the version
// marker that was stamped for the change.
type Event struct {
	Type string `json:"type"`
	Name string `json:"name"`
	TS   string `json:"ts"`
}

// RemoteSignaler forwards an announcement beyond this process, typically
// to the websocket hub so other processes hear about the change.
type RemoteSignaler interface {
	Signal(ev Event) error
}

// Notifier tracks per-document version markers and fans change
// announcements out to in-process subscribers and an optional remote
// signaler. Announcing is best-effort on every tier: a dead subscriber or
// a failing remote never fails the write that triggered it.
type Notifier struct {
	mu      sync.Mutex
	markers map[string]string
	lastMs  int64
	subs    map[int]chan Event
	nextSub int
	remote  RemoteSignaler
}

func New() *Notifier {
	return &Notifier{
		markers: make(map[string]string),
		subs:    make(map[int]chan Event),
	}
}

// SetRemote attaches the cross-process signaler. Pass nil to detach.
func (n *Notifier) SetRemote(r RemoteSignaler) {
	n.mu.Lock()
	n.remote = r
	n.mu.Unlock()
}

// Announce stamps a new version marker for name and publishes the change
// to every subscriber and the remote signaler. Markers are wall-clock
// milliseconds rendered as strings, bumped by one whenever the clock has
// not advanced so consecutive announcements strictly increase.
func (n *Notifier) Announce(name string) {
	n.mu.Lock()
	ms := time.Now().UnixMilli()
	if ms <= n.lastMs {
		ms = n.lastMs + 1
	}
	n.lastMs = ms
	marker := strconv.FormatInt(ms, 10)
	n.markers[name] = marker
	remote := n.remote
	n.mu.Unlock()

	ev := Event{Type: TypeUpdated, Name: name, TS: marker}
	n.publish(ev)

	if remote != nil {
		if err := remote.Signal(ev); err != nil {
			logger.Sugar.Warnf("Remote signal for %s dropped: %v", name, err)
		}
	}
}

// Deliver feeds an announcement received from another process into the
// local subscribers. The marker is adopted only if it is newer than the
// one already known for that document.
func (n *Notifier) Deliver(ev Event) {
	if ev.Type != TypeUpdated || ev.Name == "" {
		return
	}
	n.mu.Lock()
	if newer(ev.TS, n.markers[ev.Name]) {
		n.markers[ev.Name] = ev.TS
	}
	n.mu.Unlock()
	n.publish(ev)
}

// Marker returns the last-known version marker for name, or "" if no
// change has been observed yet. Used as a cache-busting token on reads.
func (n *Notifier) Marker(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.markers[name]
}

// Subscribe returns a channel of announcements for all documents and a
// cancel function. Cancel is safe to call more than once.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	n.mu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (n *Notifier) publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; it will catch up on its fallback timer.
		}
	}
}

func newer(candidate, current string) bool {
	if current == "" {
		return candidate != ""
	}
	a, errA := strconv.ParseInt(candidate, 10, 64)
	b, errB := strconv.ParseInt(current, 10, 64)
	if errA != nil || errB != nil {
		return candidate != current
	}
	return a > b
}
