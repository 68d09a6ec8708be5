package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
)

func TestStatusMachineForwardFlow(t *testing.T) {
	m := domain.NewStatusMachine(nil)
	path := []domain.Status{
		domain.StatusPending, domain.StatusConfirmed, domain.StatusShipped,
		domain.StatusArrived, domain.StatusDelivered,
	}
	for i := 1; i < len(path); i++ {
		override, err := m.Check(path[i-1], path[i], false)
		require.NoError(t, err, "%s -> %s", path[i-1], path[i])
		assert.False(t, override)
	}
	assert.True(t, m.Allowed(domain.StatusShipped, domain.StatusShipped))
}

func TestStatusMachineOffTableNeedsConfirmation(t *testing.T) {
	m := domain.NewStatusMachine(nil)

	_, err := m.Check(domain.StatusDelivered, domain.StatusPending, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNeedsConfirmation))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	override, err := m.Check(domain.StatusDelivered, domain.StatusPending, true)
	require.NoError(t, err)
	assert.True(t, override)

	_, err = m.Check(domain.StatusCancelled, domain.StatusConfirmed, false)
	assert.ErrorIs(t, err, domain.ErrNeedsConfirmation)
}

func TestStatusMachineCustomTable(t *testing.T) {
	m := domain.NewStatusMachine(domain.Transitions{
		domain.StatusPending: {domain.StatusDelivered},
	})
	assert.True(t, m.Allowed(domain.StatusPending, domain.StatusDelivered))
	assert.False(t, m.Allowed(domain.StatusPending, domain.StatusConfirmed))
}

func TestParseStatus(t *testing.T) {
	st, err := domain.ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, st)

	_, err = domain.ParseStatus("lost")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}
