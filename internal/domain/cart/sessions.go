package cart

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// DefaultSession is the session served when a client does not name one.
const DefaultSession = "default"

// ErrInvalidSession is returned for session names that cannot be used as a
// storage key suffix.
var ErrInvalidSession = errors.New("invalid cart session")

// Sessions holds one cart per client session. Carts are created and
// initialized from storage on first use, and dropped by Evict once idle.
type Sessions struct {
	storage  Storage
	lg       *zap.Logger
	observer func(session string, ev Event)
	now      func() time.Time

	mu    sync.Mutex
	carts map[string]*session
}

type session struct {
	cart     *Cart
	ready    chan struct{}
	lastSeen time.Time
}

func (s *session) initialized() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// NewSessions creates a session registry persisting carts to storage, which
// may be nil. The observer, when set, receives events from every cart.
func NewSessions(storage Storage, lg *zap.Logger, observer func(session string, ev Event)) *Sessions {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Sessions{
		storage:  storage,
		lg:       lg,
		observer: observer,
		now:      time.Now,
		carts:    make(map[string]*session),
	}
}

// Get returns the cart of the given session, creating it on first use. An
// empty session selects DefaultSession.
//
// The registry lock is not held while a new cart loads from storage; callers
// racing on the same session wait for that load instead.
func (s *Sessions) Get(ctx context.Context, name string) (*Cart, error) {
	if name == "" {
		name = DefaultSession
	}
	if !validSession(name) {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	if e, ok := s.carts[name]; ok {
		e.lastSeen = s.now()
		s.mu.Unlock()
		if e.initialized() {
			return e.cart, nil
		}
		select {
		case <-e.ready:
			return e.cart, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &session{
		cart: New(Options{
			Storage: s.storage,
			Key:     SessionKey(name),
			Logger:  s.lg.With(zap.String("cart_session", name)),
		}),
		ready:    make(chan struct{}),
		lastSeen: s.now(),
	}
	s.carts[name] = e
	s.mu.Unlock()

	if s.observer != nil {
		e.cart.Subscribe(func(ev Event) { s.observer(name, ev) })
	}
	// A cancelled caller must not leave an empty cart cached for everyone else.
	e.cart.Initialize(context.WithoutCancel(ctx))
	close(e.ready)
	return e.cart, nil
}

// Len returns the number of carts held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Evict drops carts not requested for at least idle and returns how many were
// dropped. An evicted session is rebuilt from storage on its next Get; without
// storage it starts empty.
func (s *Sessions) Evict(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for name, e := range s.carts {
		if e.initialized() && now.Sub(e.lastSeen) >= idle {
			delete(s.carts, name)
			n++
		}
	}
	return n
}

// RunEviction calls Evict every interval until ctx is cancelled.
func (s *Sessions) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(idle); n > 0 {
				s.lg.Debug("Evicted idle carts", zap.Int("count", n))
			}
		}
	}
}

// SessionKey returns the storage key of a session's cart.
func SessionKey(session string) string {
	if session == DefaultSession {
		return DefaultKey
	}
	return DefaultKey + ":" + session
}

// validSession accepts 1-64 bytes of [A-Za-z0-9_-].
func validSession(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	for i := range len(s) {
		switch c := s[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
