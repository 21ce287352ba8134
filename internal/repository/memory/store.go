// Package memory is an in-process implementation of repository.Store used by
// tests and by the "memory" database driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository"
)

// Store keeps every table in maps guarded by one mutex. A transaction holds
// the mutex from start to end, so transactions are fully serialized.
type Store struct {
	view

	mu     sync.Mutex
	st     *state
	faults map[string]error
}

var _ repository.Store = (*Store)(nil)

type state struct {
	users      map[int64]*domain.User
	categories map[int64]*domain.Category
	products   map[int64]*domain.Product
	images     map[int64]*domain.ProductImage
	cartItems  map[int64]*domain.CartItem
	orders     map[int64]*domain.Order
	orderItems map[int64]*domain.OrderItem
	ratings    map[int64]*domain.Rating
	outbox     []*domain.OutboxEvent

	seq map[string]int64
}

func newState() *state {
	return &state{
		users:      make(map[int64]*domain.User),
		categories: make(map[int64]*domain.Category),
		products:   make(map[int64]*domain.Product),
		images:     make(map[int64]*domain.ProductImage),
		cartItems:  make(map[int64]*domain.CartItem),
		orders:     make(map[int64]*domain.Order),
		orderItems: make(map[int64]*domain.OrderItem),
		ratings:    make(map[int64]*domain.Rating),
		seq:        make(map[string]int64),
	}
}

func cloneMap[V any](m map[int64]*V) map[int64]*V {
	out := make(map[int64]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (st *state) clone() *state {
	c := &state{
		users:      cloneMap(st.users),
		categories: cloneMap(st.categories),
		products:   cloneMap(st.products),
		images:     cloneMap(st.images),
		cartItems:  cloneMap(st.cartItems),
		orders:     cloneMap(st.orders),
		orderItems: cloneMap(st.orderItems),
		ratings:    cloneMap(st.ratings),
		outbox:     make([]*domain.OutboxEvent, len(st.outbox)),
		seq:        make(map[string]int64, len(st.seq)),
	}
	for i, e := range st.outbox {
		ec := *e
		c.outbox[i] = &ec
	}
	for k, v := range st.seq {
		c.seq[k] = v
	}
	return c
}

func (st *state) nextID(table string) int64 {
	st.seq[table]++
	return st.seq[table]
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		st:     newState(),
		faults: make(map[string]error),
	}
	s.view = view{s: s}
	return s
}

// SeedDemoData inserts the same users and categories as the SQL seed
// migration.
func (s *Store) SeedDemoData() {
	now := time.Now().UTC()
	s.AddUser(&domain.User{ID: 1, Name: "Demo Buyer", Email: "buyer@marketplace.local", Role: domain.RoleBuyer, Active: true, CreatedAt: now})
	s.AddUser(&domain.User{ID: 2, Name: "Demo Vendor", Email: "vendor@marketplace.local", Role: domain.RoleVendor, Active: true, CreatedAt: now})
	s.AddUser(&domain.User{ID: 3, Name: "Second Buyer", Email: "buyer2@marketplace.local", Role: domain.RoleBuyer, Active: true, CreatedAt: now})
	s.AddCategory(&domain.Category{Name: "Electronics", Description: "Devices, gadgets and accessories"})
	s.AddCategory(&domain.Category{Name: "Books", Description: "Printed and digital books"})
	s.AddCategory(&domain.Category{Name: "Home & Kitchen", Description: "Furniture, decor and kitchenware"})
	s.AddCategory(&domain.Category{Name: "Sports", Description: "Sporting goods and outdoor equipment"})
}

// AddUser inserts or replaces a user. A zero ID is assigned from the
// sequence.
func (s *Store) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.st.nextID("users")
	} else if u.ID > s.st.seq["users"] {
		s.st.seq["users"] = u.ID
	}
	c := *u
	s.st.users[u.ID] = &c
}

func (s *Store) AddCategory(c *domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.st.nextID("categories")
	} else if c.ID > s.st.seq["categories"] {
		s.st.seq["categories"] = c.ID
	}
	cp := *c
	s.st.categories[c.ID] = &cp
}

// FailOn makes the named query method return err until cleared with a nil
// err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

// InTx runs fn with exclusive access to the store and restores the prior
// state if fn returns an error.
func (s *Store) InTx(ctx context.Context, fn func(q repository.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(&view{s: s, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Outbox returns a copy of every outbox event, processed or not.
func (s *Store) Outbox() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.OutboxEvent, 0, len(s.st.outbox))
	for _, e := range s.st.outbox {
		out = append(out, *e)
	}
	return out
}

// view runs queries against the store's state. Outside a transaction each
// call takes the store mutex; inside InTx the mutex is already held.
type view struct {
	s    *Store
	inTx bool
}

func (v *view) begin(ctx context.Context, method string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := func() {}
	if !v.inTx {
		v.s.mu.Lock()
		unlock = v.s.mu.Unlock
	}
	if err := v.s.faults[method]; err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

func (v *view) state() *state {
	return v.s.st
}
