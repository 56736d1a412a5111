package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// ContractDateLayout is the sign date format used in contract summaries
const ContractDateLayout = "02.01.2006"

// Contract gates whether a customer may buy and pay.
// A new contract starts active; Terminate and Renew move it between
// the active and terminated states.
type Contract struct {
	Number          string
	SignDate        time.Time
	Active          bool
	TerminationDate *time.Time
}

// NewContract creates an active contract
func NewContract(number string, signDate time.Time) (*Contract, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}

	return &Contract{
		Number:   number,
		SignDate: signDate,
		Active:   true,
	}, nil
}

// IsActive returns true if the contract is in force
func (c *Contract) IsActive() bool {
	return c.Active
}

// Terminate ends an active contract and records when it happened.
// Terminating an already terminated contract is an error.
func (c *Contract) Terminate() error {
	if !c.Active {
		return shared.NewDomainError("CONTRACT_ALREADY_TERMINATED", "Contract is already terminated")
	}

	now := time.Now()
	c.Active = false
	c.TerminationDate = &now
	return nil
}

// Renew reactivates a terminated contract from signDate
func (c *Contract) Renew(signDate time.Time) error {
	if c.Active {
		return shared.NewDomainError("CONTRACT_ALREADY_ACTIVE", "Contract is already active")
	}

	c.Active = true
	c.SignDate = signDate
	c.TerminationDate = nil
	return nil
}

// Clone returns an independent copy of the contract
func (c *Contract) Clone() *Contract {
	clone := *c
	if c.TerminationDate != nil {
		t := *c.TerminationDate
		clone.TerminationDate = &t
	}
	return &clone
}

// Status returns "Active" or "Terminated"
func (c *Contract) Status() string {
	if c.Active {
		return "Active"
	}
	return "Terminated"
}

// String returns a human-readable summary
func (c *Contract) String() string {
	return fmt.Sprintf("Contract #%s from %s - %s", c.Number, c.SignDate.Format(ContractDateLayout), c.Status())
}
