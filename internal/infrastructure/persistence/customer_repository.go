package persistence

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryCustomerRepository implements CustomerRepository on a slice.
// Customers keep their insertion order; Update replaces in place.
type InMemoryCustomerRepository struct {
	mu        sync.Mutex
	customers []*partner.Customer
	logger    *zap.Logger
}

// InMemoryCustomerRepositoryOption is a functional option for configuring the repository
type InMemoryCustomerRepositoryOption func(*InMemoryCustomerRepository)

// WithRepositoryLogger sets the logger for the repository
func WithRepositoryLogger(logger *zap.Logger) InMemoryCustomerRepositoryOption {
	return func(r *InMemoryCustomerRepository) {
		r.logger = logger
	}
}

// NewInMemoryCustomerRepository creates an empty repository
func NewInMemoryCustomerRepository(opts ...InMemoryCustomerRepositoryOption) *InMemoryCustomerRepository {
	r := &InMemoryCustomerRepository{
		customers: make([]*partner.Customer, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add stores a new customer
func (r *InMemoryCustomerRepository) Add(customer *partner.Customer) error {
	if customer == nil {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Customer cannot be nil")
	}
	if strings.TrimSpace(customer.ID) == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Customer ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(customer.ID) >= 0 {
		return fmt.Errorf("%w: customer %s", shared.ErrAlreadyExists, customer.ID)
	}
	r.customers = append(r.customers, customer)
	r.logger.Debug("customer stored",
		zap.String("customer_id", customer.ID),
		zap.String("tier", customer.Tier().String()),
	)
	return nil
}

// Remove deletes a customer by ID
func (r *InMemoryCustomerRepository) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.customers = slices.Delete(r.customers, i, i+1)
	r.logger.Debug("customer removed", zap.String("customer_id", id))
	return true
}

// FindByID finds a customer by its ID
func (r *InMemoryCustomerRepository) FindByID(id string) (*partner.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, shared.ErrNotFound
	}
	return r.customers[i], nil
}

// FindAll returns every customer in insertion order
func (r *InMemoryCustomerRepository) FindAll() []*partner.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.customers)
}

// Update replaces the stored customer with the same ID
func (r *InMemoryCustomerRepository) Update(customer *partner.Customer) bool {
	if customer == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(customer.ID)
	if i < 0 {
		return false
	}
	r.customers[i] = customer
	return true
}

// Exists checks if a customer with the given ID is stored
func (r *InMemoryCustomerRepository) Exists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.indexOf(id) >= 0
}

// Count returns the number of stored customers
func (r *InMemoryCustomerRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.customers)
}

// FindByTier returns customers of one tier
func (r *InMemoryCustomerRepository) FindByTier(tier partner.CustomerTier) []*partner.Customer {
	return r.filter(func(c *partner.Customer) bool {
		return c.Tier() == tier
	})
}

// FindWithActiveContracts returns customers whose contract is active
func (r *InMemoryCustomerRepository) FindWithActiveContracts() []*partner.Customer {
	return r.filter((*partner.Customer).HasActiveContract)
}

// Clear removes every customer
func (r *InMemoryCustomerRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.customers = make([]*partner.Customer, 0)
	r.logger.Debug("repository cleared")
}

func (r *InMemoryCustomerRepository) filter(keep func(*partner.Customer) bool) []*partner.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*partner.Customer, 0)
	for _, c := range r.customers {
		if keep(c) {
			result = append(result, c)
		}
	}
	return result
}

// indexOf must be called with mu held. Blank IDs never match.
func (r *InMemoryCustomerRepository) indexOf(id string) int {
	if strings.TrimSpace(id) == "" {
		return -1
	}
	return slices.IndexFunc(r.customers, func(c *partner.Customer) bool {
		return c.ID == id
	})
}

// Ensure InMemoryCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*InMemoryCustomerRepository)(nil)
