package model_test

import (
	"testing"

	"github.com/kasuganosora/itemsim/model"
	"github.com/kasuganosora/itemsim/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{
		"accounts", "characters", "items",
		"inventory_entries", "equipped_items", "audit_logs",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestCharacterName_Unique(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.Character{AccountID: 1, Name: "Solo"}).Error)
	assert.Error(t, db.Create(&model.Character{AccountID: 2, Name: "Solo"}).Error)
}

func TestEquippedItem_UniquePerCharAndCode(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.EquippedItem{CharID: 1, ItemCode: 9}).Error)
	assert.Error(t, db.Create(&model.EquippedItem{CharID: 1, ItemCode: 9}).Error)
	assert.NoError(t, db.Create(&model.EquippedItem{CharID: 2, ItemCode: 9}).Error)
}
