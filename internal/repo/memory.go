package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// MemoryStore keeps users, items and reservations in process memory.
// It backs the service and handler test suites; a single mutex makes the conflict check and
// the insert in Create one atomic unit, which is the same guarantee the
// Postgres store gives with its advisory lock.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]domain.User
	items        map[uuid.UUID]domain.Item
	reservations map[uuid.UUID]domain.Reservation
	now          func() time.Time
}

// NewMemoryStore returns an empty store. now stamps CreatedAt and UpdatedAt;
// pass nil to use time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		users:        make(map[uuid.UUID]domain.User),
		items:        make(map[uuid.UUID]domain.Item),
		reservations: make(map[uuid.UUID]domain.Reservation),
		now:          now,
	}
}

// PutUser inserts or replaces a user. A zero ID is replaced with a new one.
func (s *MemoryStore) PutUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// PutItem inserts or replaces an item. A zero ID is replaced with a new one.
func (s *MemoryStore) PutItem(it domain.Item) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = s.now()
	}
	s.items[it.ID] = it
	return it
}

// Users returns the store's UserRepo view.
func (s *MemoryStore) Users() UserRepo { return memUsers{s} }

// Items returns the store's ItemRepo view.
func (s *MemoryStore) Items() ItemRepo { return memItems{s} }

// Reservations returns the store's ReservationRepo view.
func (s *MemoryStore) Reservations() ReservationRepo { return memReservations{s} }

type memUsers struct{ s *MemoryStore }

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("repo.MemoryStore.Users.GetByID: %w", domain.ErrUserNotFound)
	}
	return u, nil
}

type memItems struct{ s *MemoryStore }

func (m memItems) GetByID(_ context.Context, id uuid.UUID) (domain.Item, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	it, ok := m.s.items[id]
	if !ok {
		return domain.Item{}, fmt.Errorf("repo.MemoryStore.Items.GetByID: %w", domain.ErrItemNotFound)
	}
	return it, nil
}

type memReservations struct{ s *MemoryStore }

// withOwner projects the current item owner onto r. Callers hold the lock.
func (s *MemoryStore) withOwner(r domain.Reservation) domain.Reservation {
	r.OwnerID = s.items[r.ItemID].OwnerID
	return r
}

// findConflictingLocked scans the item's reservations. Callers hold the lock.
func (s *MemoryStore) findConflictingLocked(itemID uuid.UUID, iv domain.Interval, policy domain.ConflictPolicy) (domain.Reservation, bool) {
	var hits []domain.Reservation
	for _, r := range s.reservations {
		if r.ItemID == itemID && policy.Blocks(r.Status) && r.Interval().Overlaps(iv) {
			hits = append(hits, r)
		}
	}
	if len(hits) == 0 {
		return domain.Reservation{}, false
	}
	sortReservations(hits, true)
	return s.withOwner(hits[0]), true
}

func (m memReservations) FindConflicting(_ context.Context, itemID uuid.UUID, iv domain.Interval, policy domain.ConflictPolicy) (domain.Reservation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.findConflictingLocked(itemID, iv, policy)
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.FindConflicting: %w", domain.ErrNotFound)
	}
	return r, nil
}

func (m memReservations) GetByID(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.GetByID: %w", domain.ErrReservationNotFound)
	}
	return m.s.withOwner(r), nil
}

func (m memReservations) ListByBooker(_ context.Context, bookerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	return m.list(func(r domain.Reservation) bool { return r.BookerID == bookerID }, state, now, p)
}

func (m memReservations) ListByOwner(_ context.Context, ownerID uuid.UUID, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	return m.list(func(r domain.Reservation) bool { return r.OwnerID == ownerID }, state, now, p)
}

func (m memReservations) list(subject func(domain.Reservation) bool, state domain.State, now time.Time, p domain.PaginationParams) ([]domain.Reservation, error) {
	if !slices.Contains(domain.States, state) {
		return nil, fmt.Errorf("repo.MemoryStore.list: %w: unknown state: %s", domain.ErrValidation, state)
	}

	m.s.mu.RLock()
	out := []domain.Reservation{}
	for _, r := range m.s.reservations {
		r = m.s.withOwner(r)
		if subject(r) && state.Matches(r, now) {
			out = append(out, r)
		}
	}
	m.s.mu.RUnlock()

	sortReservations(out, state.Ascending())
	lo, hi := p.Window(len(out))
	return out[lo:hi], nil
}

func (m memReservations) ListByItem(_ context.Context, itemID uuid.UUID) ([]domain.Reservation, error) {
	m.s.mu.RLock()
	out := []domain.Reservation{}
	for _, r := range m.s.reservations {
		if r.ItemID == itemID {
			out = append(out, m.s.withOwner(r))
		}
	}
	m.s.mu.RUnlock()

	sortReservations(out, true)
	return out, nil
}

func (m memReservations) FindFinished(_ context.Context, itemID, bookerID uuid.UUID, now time.Time) (domain.Reservation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var (
		best  domain.Reservation
		found bool
	)
	for _, r := range m.s.reservations {
		if r.ItemID != itemID || r.BookerID != bookerID || r.Status != domain.StatusApproved {
			continue
		}
		if !r.Interval().EndsBefore(now) {
			continue
		}
		if !found || r.End.After(best.End) {
			best, found = r, true
		}
	}
	if !found {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.FindFinished: %w", domain.ErrNotFound)
	}
	return m.s.withOwner(best), nil
}

func (m memReservations) Create(_ context.Context, res domain.Reservation, policy domain.ConflictPolicy) (domain.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[res.BookerID]; !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.Create: %w", domain.ErrUserNotFound)
	}
	if _, ok := m.s.items[res.ItemID]; !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.Create: %w", domain.ErrItemNotFound)
	}
	if _, conflict := m.s.findConflictingLocked(res.ItemID, res.Interval(), policy); conflict {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.Create: %w", domain.ErrIntervalConflict)
	}

	now := m.s.now()
	res.ID = uuid.New()
	res.OwnerID = uuid.Nil
	res.CreatedAt = now
	res.UpdatedAt = now
	m.s.reservations[res.ID] = res
	return m.s.withOwner(res), nil
}

func (m memReservations) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.Status) (domain.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	r, ok := m.s.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.UpdateStatus: %w", domain.ErrReservationNotFound)
	}
	if r.Status != from {
		return domain.Reservation{}, fmt.Errorf("repo.MemoryStore.UpdateStatus: %w: status is %s, not %s",
			domain.ErrIllegalTransition, r.Status, from)
	}
	r.Status = to
	r.UpdatedAt = m.s.now()
	m.s.reservations[id] = r
	return m.s.withOwner(r), nil
}

// sortReservations orders by start, ties broken by ID, matching the SQL
// ORDER BY clauses of the Postgres store.
func sortReservations(rs []domain.Reservation, ascending bool) {
	slices.SortFunc(rs, func(a, b domain.Reservation) int {
		c := a.Start.Compare(b.Start)
		if c == 0 {
			c = cmp.Compare(a.ID.String(), b.ID.String())
		}
		if !ascending {
			c = -c
		}
		return c
	})
}
