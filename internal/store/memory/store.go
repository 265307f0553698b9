// Package memory holds in-process implementations of every repository. It backs the server when no
// DATABASE_URL is configured and gives tests a store with real semantics. All repositories returned by
// one Store share a single lock, so cross-collection reads such as the analytics join see one snapshot.
package memory

import (
	"sync"

	auditdomain "bistro-boss/backend/internal/audit/domain"
	cartdomain "bistro-boss/backend/internal/cart/domain"
	menudomain "bistro-boss/backend/internal/menu/domain"
	orderdomain "bistro-boss/backend/internal/order/domain"
	reviewdomain "bistro-boss/backend/internal/review/domain"
	userdomain "bistro-boss/backend/internal/user/domain"
)

// Store is the shared in-memory state.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*userdomain.User
	menu      map[string]*menudomain.Item
	reviews   map[string]*reviewdomain.Review
	carts     map[string]*cartdomain.Entry
	orders    map[string]*orderdomain.Order
	orderByTx map[string]string
	audit     []*auditdomain.AuditLog
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:     make(map[string]*userdomain.User),
		menu:      make(map[string]*menudomain.Item),
		reviews:   make(map[string]*reviewdomain.Review),
		carts:     make(map[string]*cartdomain.Entry),
		orders:    make(map[string]*orderdomain.Order),
		orderByTx: make(map[string]string),
	}
}

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Menu returns the menu catalog repository.
func (s *Store) Menu() *MenuRepository { return &MenuRepository{s: s} }

// Reviews returns the review repository.
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s: s} }

// Carts returns the cart repository.
func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

// Orders returns the order repository.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// Audit returns the audit log repository.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{s: s} }

// Analytics returns the aggregate query repository.
func (s *Store) Analytics() *AnalyticsRepository { return &AnalyticsRepository{s: s} }
