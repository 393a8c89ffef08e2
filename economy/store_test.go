package economy_test

import (
	"context"
	"testing"

	"github.com/kasuganosora/itemsim/economy"
	"github.com/kasuganosora/itemsim/model"
	"github.com/kasuganosora/itemsim/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendMoney_ConditionalDecrement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	char := seedCharacter(t, db, "spender")
	s := economy.NewGormStores(db)
	ctx := context.Background()

	ok, err := s.SpendMoney(ctx, char.ID, 4000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(6000), charState(t, db, char.ID).Money)

	// Balance does not cover the amount: no row matches, no change.
	ok, err = s.SpendMoney(ctx, char.ID, 7000)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(6000), charState(t, db, char.ID).Money)

	// Spending the exact balance is allowed.
	ok, err = s.SpendMoney(ctx, char.ID, 6000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), charState(t, db, char.ID).Money)
}

func TestAdjustStats_AppliesDeltas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	char := seedCharacter(t, db, "shifting")
	s := economy.NewGormStores(db)
	ctx := context.Background()

	require.NoError(t, s.AdjustStats(ctx, char.ID, 120, 15))
	got := charState(t, db, char.ID)
	assert.Equal(t, model.BaseHealth+120, got.Health)
	assert.Equal(t, model.BasePower+15, got.Power)

	require.NoError(t, s.AdjustStats(ctx, char.ID, -120, -15))
	got = charState(t, db, char.ID)
	assert.Equal(t, model.BaseHealth, got.Health)
	assert.Equal(t, model.BasePower, got.Power)
}

func TestAddEquipped_UniquePerCharAndCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	char := seedCharacter(t, db, "unique")
	other := seedCharacter(t, db, "uniqueother")
	s := economy.NewGormStores(db)
	ctx := context.Background()

	require.NoError(t, s.AddEquipped(ctx, char.ID, 1))
	// Second row for the same (char, code) hits the unique index.
	assert.Error(t, s.AddEquipped(ctx, char.ID, 1))

	// Other codes and other characters are unaffected.
	assert.NoError(t, s.AddEquipped(ctx, char.ID, 2))
	assert.NoError(t, s.AddEquipped(ctx, other.ID, 1))
}

func TestRemoveInventory_ReportsMissingRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	char := seedCharacter(t, db, "remover")
	s := economy.NewGormStores(db)
	ctx := context.Background()

	require.NoError(t, s.AddInventory(ctx, char.ID, 1, 2))
	entries, err := s.ListInventory(ctx, char.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	removed, err := s.RemoveInventory(ctx, []int64{entries[0].ID, entries[1].ID, 99999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestGetCharacter_MissingIsNilNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := economy.NewGormStores(db)

	char, err := s.GetCharacter(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, char)
}
