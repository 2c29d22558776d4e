// Package memory is a process-local store with the same semantics as the
// postgres repositories, cascades included. It backs STORE_DRIVER=memory and
// the service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	filedomain "github.com/atelier-arq/atelier-backend/internal/files/domain"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	timedomain "github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type state struct {
	seq           int64
	users         map[string]usersdomain.User
	projects      map[int64]projectdomain.Project
	tasks         map[int64]taskdomain.Task
	comments      map[int64]taskdomain.Comment
	history       map[int64]taskdomain.History
	files         map[int64]filedomain.File
	notifications map[int64]notifdomain.Notification
	entries       map[int64]timedomain.TimeEntry
}

func newState() state {
	return state{
		users:         map[string]usersdomain.User{},
		projects:      map[int64]projectdomain.Project{},
		tasks:         map[int64]taskdomain.Task{},
		comments:      map[int64]taskdomain.Comment{},
		history:       map[int64]taskdomain.History{},
		files:         map[int64]filedomain.File{},
		notifications: map[int64]notifdomain.Notification{},
		entries:       map[int64]timedomain.TimeEntry{},
	}
}

func (s state) clone() state {
	return state{
		seq:           s.seq,
		users:         maps.Clone(s.users),
		projects:      maps.Clone(s.projects),
		tasks:         maps.Clone(s.tasks),
		comments:      maps.Clone(s.comments),
		history:       maps.Clone(s.history),
		files:         maps.Clone(s.files),
		notifications: maps.Clone(s.notifications),
		entries:       maps.Clone(s.entries),
	}
}

// Store holds every table behind one mutex. A transaction holds the mutex
// for its whole duration and restores a snapshot when fn fails.
type Store struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type txKey struct{}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// lock takes the mutex unless ctx already runs inside one of s's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *Store) Users() *Users                 { return &Users{s: s} }
func (s *Store) Projects() *Projects           { return &Projects{s: s} }
func (s *Store) Tasks() *Tasks                 { return &Tasks{s: s} }
func (s *Store) TimeEntries() *TimeEntries     { return &TimeEntries{s: s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s: s} }
func (s *Store) Files() *Files                 { return &Files{s: s} }
func (s *Store) References() *References       { return &References{s: s} }

// Ping satisfies the health check.
func (s *Store) Ping(context.Context) error { return nil }

type References struct{ s *Store }

func (r *References) ProjectExists(ctx context.Context, id int64) (bool, error) {
	defer r.s.lock(ctx)()
	_, ok := r.s.st.projects[id]
	return ok, nil
}

func (r *References) TaskExists(ctx context.Context, id int64) (bool, error) {
	defer r.s.lock(ctx)()
	_, ok := r.s.st.tasks[id]
	return ok, nil
}

func (r *References) UserExists(ctx context.Context, id string) (bool, error) {
	defer r.s.lock(ctx)()
	_, ok := r.s.st.users[id]
	return ok, nil
}

// sortedValues returns the map values ordered by less.
func sortedValues[K comparable, V any](m map[K]V, cmp func(a, b V) int) []V {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, cmp)
	return out
}

// newestFirst orders by creation time, then id, both descending.
func newestFirst(at1, at2 time.Time, id1, id2 int64) int {
	if c := at2.Compare(at1); c != 0 {
		return c
	}
	switch {
	case id1 > id2:
		return -1
	case id1 < id2:
		return 1
	}
	return 0
}

// oldestFirst is the reverse of newestFirst.
func oldestFirst(at1, at2 time.Time, id1, id2 int64) int {
	return -newestFirst(at1, at2, id1, id2)
}
