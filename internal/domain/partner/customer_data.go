package partner

import (
	"github.com/crm/backend/internal/domain/shared"
)

// CustomerData carries a customer's personal details
type CustomerData struct {
	FullName string `json:"full_name" validate:"notblank,max=200"`
	Email    string `json:"email" validate:"notblank,max=200"`
	Phone    string `json:"phone" validate:"notblank,max=50"`
	Address  string `json:"address" validate:"max=500"`
}

// NewCustomerData creates personal data; it is not validated here
func NewCustomerData(fullName, email, phone, address string) *CustomerData {
	return &CustomerData{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Address:  address,
	}
}

// Validate checks that name, email and phone are present
func (d *CustomerData) Validate() error {
	return shared.ValidateStruct(d)
}

// IsValid returns true if the data passes validation
func (d *CustomerData) IsValid() bool {
	return d.Validate() == nil
}

// Clone returns an independent copy
func (d *CustomerData) Clone() *CustomerData {
	clone := *d
	return &clone
}

// String returns a human-readable summary
func (d *CustomerData) String() string {
	return d.FullName + " | " + d.Email + " | " + d.Phone
}
