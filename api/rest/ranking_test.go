package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/kasuganosora/itemsim/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRankedCharacters(t *testing.T, env *testEnv) {
	t.Helper()
	acc := &model.Account{Username: "ranked", PasswordHash: "x", Status: model.AccountActive}
	require.NoError(t, env.db.Create(acc).Error)
	for _, c := range []struct {
		name  string
		money int64
	}{
		{"Bronze", 1000},
		{"Gold", 90000},
		{"Silver", 40000},
	} {
		require.NoError(t, env.db.Create(&model.Character{
			AccountID: acc.ID,
			Name:      c.name,
			Health:    model.BaseHealth,
			Power:     model.BasePower,
			Money:     c.money,
		}).Error)
	}
}

func TestRanking_DBFallbackOrdersByMoney(t *testing.T) {
	env := newTestEnv(t)
	seedRankedCharacters(t, env)

	w := env.doJSON(http.MethodGet, "/api/ranking/money", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	ranking := body["ranking"].([]interface{})
	require.Len(t, ranking, 3)

	first := ranking[0].(map[string]interface{})
	assert.Equal(t, "Gold", first["char_name"])
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, float64(90000), first["money"])

	last := ranking[2].(map[string]interface{})
	assert.Equal(t, "Bronze", last["char_name"])
}

func TestRanking_ServedFromCacheAfterRefresh(t *testing.T) {
	env := newTestEnv(t)
	seedRankedCharacters(t, env)

	env.rank.Refresh(context.Background())

	w := env.doJSON(http.MethodGet, "/api/ranking/money?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ranking := decode(t, w)["ranking"].([]interface{})
	require.Len(t, ranking, 2)
	assert.Equal(t, "Gold", ranking[0].(map[string]interface{})["char_name"])
	assert.Equal(t, "Silver", ranking[1].(map[string]interface{})["char_name"])
}
