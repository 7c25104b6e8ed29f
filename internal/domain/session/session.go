// Package session tracks signed-in operators and ends their sessions after a
// period with no activity.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("session expired")

const (
	DefaultWarnAfter = 20 * time.Second
	DefaultTimeout   = 30 * time.Second
)

// Session is handed to every mutating operation in place of process-wide
// "current user" state.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Master    bool      `json:"master"`
	StartedAt time.Time `json:"startedAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Actor is the name recorded against audit entries.
func (s Session) Actor() string {
	if s.Username == "" {
		return "system"
	}
	return s.Username
}

type entry struct {
	session Session
	gen     uint64
	warned  bool
	warn    *time.Timer
	expire  *time.Timer
}

type Tracker struct {
	warnAfter time.Duration
	timeout   time.Duration
	onWarn    func(Session)
	onExpire  func(Session)
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type Option func(*Tracker)

// OnWarn runs once per idle stretch, warnAfter into it.
func OnWarn(fn func(Session)) Option {
	return func(t *Tracker) { t.onWarn = fn }
}

func OnExpire(fn func(Session)) Option {
	return func(t *Tracker) { t.onExpire = fn }
}

func NewTracker(warnAfter, timeout time.Duration, opts ...Option) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if warnAfter <= 0 || warnAfter >= timeout {
		warnAfter = 0
	}
	t := &Tracker{
		warnAfter: warnAfter,
		timeout:   timeout,
		now:       time.Now,
		sessions:  map[string]*entry{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Start(username, role string, master bool) Session {
	now := t.now()
	s := Session{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      role,
		Master:    master,
		StartedAt: now,
		LastSeen:  now,
	}
	t.mu.Lock()
	e := &entry{session: s}
	t.sessions[s.ID] = e
	t.arm(e)
	t.mu.Unlock()
	return s
}

// Touch records activity and rearms both timers. Earlier timers never fire
// after a Touch.
func (t *Tracker) Touch(id string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return Session{}, ErrExpired
	}
	e.session.LastSeen = t.now()
	e.warned = false
	t.arm(e)
	return e.session, nil
}

func (t *Tracker) Get(id string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return Session{}, false
	}
	return e.session, true
}

// Warned reports whether the idle warning has fired since the last Touch.
func (t *Tracker) Warned(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	return ok && e.warned
}

func (t *Tracker) End(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return false
	}
	stop(e)
	delete(t.sessions, id)
	return true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Close stops every timer without running callbacks.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, e := range t.sessions {
		stop(e)
		delete(t.sessions, id)
	}
}

// arm must be called with mu held.
func (t *Tracker) arm(e *entry) {
	stop(e)
	e.gen++
	gen := e.gen
	id := e.session.ID
	if t.warnAfter > 0 {
		e.warn = time.AfterFunc(t.warnAfter, func() { t.fireWarn(id, gen) })
	}
	e.expire = time.AfterFunc(t.timeout, func() { t.fireExpire(id, gen) })
}

func (t *Tracker) fireWarn(id string, gen uint64) {
	t.mu.Lock()
	e, ok := t.sessions[id]
	if !ok || e.gen != gen {
		t.mu.Unlock()
		return
	}
	e.warned = true
	s := e.session
	t.mu.Unlock()
	if t.onWarn != nil {
		t.onWarn(s)
	}
}

func (t *Tracker) fireExpire(id string, gen uint64) {
	t.mu.Lock()
	e, ok := t.sessions[id]
	if !ok || e.gen != gen {
		t.mu.Unlock()
		return
	}
	stop(e)
	delete(t.sessions, id)
	s := e.session
	t.mu.Unlock()
	if t.onExpire != nil {
		t.onExpire(s)
	}
}

func stop(e *entry) {
	if e.warn != nil {
		e.warn.Stop()
		e.warn = nil
	}
	if e.expire != nil {
		e.expire.Stop()
		e.expire = nil
	}
}
