package partner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContract(t *testing.T) {
	signDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates active contract", func(t *testing.T) {
		contract, err := NewContract("C-001", signDate)

		require.NoError(t, err)
		assert.Equal(t, "C-001", contract.Number)
		assert.Equal(t, signDate, contract.SignDate)
		assert.True(t, contract.IsActive())
		assert.Nil(t, contract.TerminationDate)
	})

	t.Run("fails with blank number", func(t *testing.T) {
		contract, err := NewContract("   ", signDate)

		assert.Error(t, err)
		assert.Nil(t, contract)
		assert.Contains(t, err.Error(), "cannot be empty")
	})
}

func TestContract_Lifecycle(t *testing.T) {
	signDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("terminate sets inactive and timestamp", func(t *testing.T) {
		contract, _ := NewContract("C-001", signDate)
		before := time.Now()

		require.NoError(t, contract.Terminate())

		assert.False(t, contract.IsActive())
		require.NotNil(t, contract.TerminationDate)
		assert.False(t, contract.TerminationDate.Before(before))
	})

	t.Run("terminating twice fails", func(t *testing.T) {
		contract, _ := NewContract("C-001", signDate)
		require.NoError(t, contract.Terminate())
		first := *contract.TerminationDate

		err := contract.Terminate()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already terminated")
		assert.Equal(t, first, *contract.TerminationDate)
	})

	t.Run("renew reactivates and clears termination", func(t *testing.T) {
		contract, _ := NewContract("C-001", signDate)
		require.NoError(t, contract.Terminate())
		renewDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

		require.NoError(t, contract.Renew(renewDate))

		assert.True(t, contract.IsActive())
		assert.Equal(t, renewDate, contract.SignDate)
		assert.Nil(t, contract.TerminationDate)
	})

	t.Run("renewing an active contract fails", func(t *testing.T) {
		contract, _ := NewContract("C-001", signDate)

		err := contract.Renew(time.Now())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already active")
		assert.Equal(t, signDate, contract.SignDate)
	})
}

func TestContract_Clone(t *testing.T) {
	contract, _ := NewContract("C-001", time.Now())
	require.NoError(t, contract.Terminate())

	clone := contract.Clone()
	*clone.TerminationDate = time.Time{}
	clone.Number = "changed"

	assert.Equal(t, "C-001", contract.Number)
	assert.False(t, contract.TerminationDate.IsZero())
}

func TestContract_String(t *testing.T) {
	contract, _ := NewContract("42", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Contract #42 from 05.03.2024 - Active", contract.String())

	require.NoError(t, contract.Terminate())
	assert.Equal(t, "Contract #42 from 05.03.2024 - Terminated", contract.String())
}
