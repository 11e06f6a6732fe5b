package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonar_RevealsAreaOnce(t *testing.T) {
	b := New()
	got := b.Sonar(Coord{0, 0})
	assert.Len(t, got, 4)
	for _, cell := range got {
		assert.True(t, cell.Revealed)
		assert.False(t, cell.Destroyed)
	}
	assert.Len(t, b.Sonar(Coord{0, 1}), 2)
}

func TestAirStrike_SparesShields(t *testing.T) {
	b := New()
	require.NoError(t, b.PlaceShield(Coord{4, 4}))

	hit := b.AirStrike(Coord{4, 4})
	assert.Len(t, hit, 8)
	center := b.At(Coord{4, 4})
	assert.False(t, center.Destroyed)
	assert.False(t, center.Shield)
}

func TestMissile_Cross(t *testing.T) {
	b := New()
	assert.Len(t, b.Missile(Coord{5, 5}), 5)
	assert.Len(t, b.Missile(Coord{5, 6}), 3, "already destroyed cells are not struck twice")
}

func TestHeal(t *testing.T) {
	b := New()
	require.NoError(t, b.PlaceShip(Aircraft, Coord{2, 0}, false))

	_, err := b.Heal(Aircraft)
	require.ErrorIs(t, err, ErrNothingToHeal)

	for _, col := range []int{0, 1, 2} {
		b.At(Coord{2, col}).Destroyed = true
	}
	healed, err := b.Heal(Aircraft)
	require.NoError(t, err)
	assert.Len(t, healed, 2)
	assert.True(t, b.At(Coord{2, 2}).Destroyed)

	_, err = b.Heal(Aircraft)
	require.ErrorIs(t, err, ErrAlreadyHealed)

	_, err = b.Heal(Destroyer)
	require.ErrorIs(t, err, ErrShipNotPlaced)
}

func TestHeal_SunkShip(t *testing.T) {
	b := New()
	require.NoError(t, b.PlaceShip(Destroyer, Coord{0, 0}, false))
	b.At(Coord{0, 0}).Destroyed = true
	b.At(Coord{0, 1}).Destroyed = true

	_, err := b.Heal(Destroyer)
	require.ErrorIs(t, err, ErrShipSunk)
}
