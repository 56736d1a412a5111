package partner

import (
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentResult is the immutable outcome of one payment attempt.
// A failed payment is a routine outcome, not an error.
type PaymentResult struct {
	success         bool
	message         string
	paidAmount      decimal.Decimal
	remainingAmount decimal.Decimal
	transactionDate time.Time
}

// PaymentSucceeded creates a successful result
func PaymentSucceeded(paid, remaining decimal.Decimal) PaymentResult {
	return PaymentResult{
		success:         true,
		message:         "Payment processed successfully",
		paidAmount:      paid,
		remainingAmount: remaining,
		transactionDate: time.Now(),
	}
}

// PaymentFailed creates a failed result with the reason
func PaymentFailed(message string) PaymentResult {
	return PaymentResult{
		success:         false,
		message:         message,
		paidAmount:      decimal.Zero,
		remainingAmount: decimal.Zero,
		transactionDate: time.Now(),
	}
}

// IsSuccess returns true if the payment was accepted
func (r PaymentResult) IsSuccess() bool {
	return r.success
}

// Message returns the outcome description
func (r PaymentResult) Message() string {
	return r.message
}

// PaidAmount returns the accepted amount, zero on failure
func (r PaymentResult) PaidAmount() decimal.Decimal {
	return r.paidAmount
}

// RemainingAmount returns the discounted total left after payment, zero on failure
func (r PaymentResult) RemainingAmount() decimal.Decimal {
	return r.remainingAmount
}

// TransactionDate returns when the attempt was made
func (r PaymentResult) TransactionDate() time.Time {
	return r.transactionDate
}

// String returns a human-readable summary
func (r PaymentResult) String() string {
	if r.success {
		return fmt.Sprintf("✓ Payment %s processed. Remaining: %s",
			valueobject.FormatAmount(r.paidAmount), valueobject.FormatAmount(r.remainingAmount))
	}
	return "✗ Payment failed: " + r.message
}
