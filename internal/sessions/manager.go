package sessions

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"

	"github.com/joescharf/bugboard/internal/dashboard"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Manager tracks dashboard sessions by id and expires idle ones.
type Manager struct {
	opts  dashboard.Options
	ttl   time.Duration
	cache *cache.Cache
}

// NewManager creates a session registry. A non-positive ttl means DefaultTTL.
func NewManager(opts dashboard.Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		opts:  opts,
		ttl:   ttl,
		cache: cache.New(ttl, ttl*2),
	}
}

// Get returns the session for id and refreshes its expiry.
func (m *Manager) Get(id string) (*dashboard.Dashboard, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	d := v.(*dashboard.Dashboard)
	m.cache.Set(id, d, m.ttl)
	return d, true
}

// Create starts a new session seeded from the manager's options.
func (m *Manager) Create() (string, *dashboard.Dashboard, error) {
	d, err := dashboard.New(m.opts)
	if err != nil {
		return "", nil, err
	}
	id, err := newID()
	if err != nil {
		return "", nil, err
	}
	m.cache.Set(id, d, m.ttl)
	return id, d, nil
}

// GetOrCreate returns the session for id, creating one when it is unknown or expired.
// created reports whether a new id was issued.
func (m *Manager) GetOrCreate(id string) (sid string, d *dashboard.Dashboard, created bool, err error) {
	if d, ok := m.Get(id); ok {
		return id, d, false, nil
	}
	sid, d, err = m.Create()
	if err != nil {
		return "", nil, false, err
	}
	return sid, d, true, nil
}

// Delete drops a session.
func (m *Manager) Delete(id string) {
	m.cache.Delete(id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// TTL returns the idle expiry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func newID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return id.String(), nil
}
