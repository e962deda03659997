package roomclient

import (
	"sort"
	"sync"
	"time"

	"travelmate/backend/models"
)

// TypingIdle is how long after the last keystroke a user stops typing.
const TypingIdle = 2 * time.Second

// TypingSet is the volatile set of names currently typing in a room.
type TypingSet struct {
	mu    sync.Mutex
	self  string
	names map[string]bool
}

// NewTypingSet ignores updates about self.
func NewTypingSet(self string) *TypingSet {
	return &TypingSet{self: self, names: make(map[string]bool)}
}

func (s *TypingSet) Set(name string, typing bool) {
	if name == "" || name == s.self {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if typing {
		s.names[name] = true
	} else {
		delete(s.names, name)
	}
}

// Names returns the typing users sorted by name.
func (s *TypingSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Typist emits typing indicators for the local user: isTyping=true on every
// keystroke and isTyping=false once input has been idle for TypingIdle.
// Indicators are sent under mu, so an idle false never overtakes the true
// of the keystroke that armed it.
type Typist struct {
	transport Transport
	roomID    string
	userName  string
	clientID  string
	idle      time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewTypist(t Transport, roomID, userName, clientID string) *Typist {
	return &Typist{transport: t, roomID: roomID, userName: userName, clientID: clientID, idle: TypingIdle}
}

// Keystroke announces typing and restarts the idle timer.
func (t *Typist) Keystroke() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	err := t.send(true)
	t.timer = time.AfterFunc(t.idle, func() { t.expire(gen) })
	return err
}

// expire sends the idle false unless a later keystroke or Stop superseded it.
func (t *Typist) expire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.timer = nil
	_ = t.send(false)
}

// Stop cancels a pending idle notification.
func (t *Typist) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Typist) send(typing bool) error {
	return t.transport.Send(models.EventTyping, models.TypingPayload{
		RoomID:   t.roomID,
		UserName: t.userName,
		IsTyping: typing,
		ClientID: t.clientID,
	})
}
