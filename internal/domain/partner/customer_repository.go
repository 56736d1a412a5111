package partner

// CustomerRepository defines the interface for customer storage.
// Implementations must serialize all operations against each other.
type CustomerRepository interface {
	// Add stores a new customer; a duplicate ID is an error
	Add(customer *Customer) error

	// Remove deletes a customer by ID and reports whether it existed
	Remove(id string) bool

	// FindByID finds a customer by its ID
	// Returns shared.ErrNotFound when absent
	FindByID(id string) (*Customer, error)

	// FindAll returns every customer in insertion order.
	// The returned slice is a snapshot owned by the caller.
	FindAll() []*Customer

	// Update replaces the stored customer with the same ID
	// and reports whether it was found
	Update(customer *Customer) bool

	// Exists checks if a customer with the given ID is stored
	Exists(id string) bool

	// Count returns the number of stored customers
	Count() int

	// FindByTier returns customers of one tier
	FindByTier(tier CustomerTier) []*Customer

	// FindWithActiveContracts returns customers whose contract is active
	FindWithActiveContracts() []*Customer

	// Clear removes every customer
	Clear()
}
