package rest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCreate_RequiresAdminKey(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{
		"item_code":  1,
		"item_name":  "Sword",
		"item_stat":  gin.H{"health": 0, "power": 30},
		"item_price": 1000,
	}

	w := env.doJSON(http.MethodPost, "/api/items", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.adminJSON(http.MethodPost, "/api/items", body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestItemCreate_DuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{"item_code": 7, "item_name": "Helm", "item_price": 500}

	w := env.adminJSON(http.MethodPost, "/api/items", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.adminJSON(http.MethodPost, "/api/items", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestItemCreate_PriceOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	for _, price := range []int64{-1, 5_000_000_000_000_000_000} {
		w := env.adminJSON(http.MethodPost, "/api/items", gin.H{
			"item_code":  9,
			"item_name":  "Broken",
			"item_price": price,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "price %d", price)
	}
}

func TestItemUpdate_NameAndStatsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedItem(3, "Old Name", 10, 5, 900)

	w := env.adminJSON(http.MethodPut, "/api/items/3", gin.H{
		"item_name": "New Name",
		"item_stat": gin.H{"health": 20, "power": 8},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(http.MethodGet, "/api/items/3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "New Name", body["item_name"])
	stat := body["item_stat"].(map[string]interface{})
	assert.Equal(t, float64(20), stat["health"])
	assert.Equal(t, float64(8), stat["power"])
	// Price is immutable.
	assert.Equal(t, float64(900), body["item_price"])
}

func TestItemUpdate_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.adminJSON(http.MethodPut, "/api/items/404", gin.H{"item_name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemList_PublicProjection(t *testing.T) {
	env := newTestEnv(t)
	env.seedItem(1, "Sword", 0, 30, 1000)
	env.seedItem(2, "Shield", 50, 0, 800)

	w := env.doJSON(http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Sword", entries[0]["item_name"])
	assert.Equal(t, float64(1000), entries[0]["item_price"])
	// The listing carries no stat bonuses.
	assert.NotContains(t, entries[0], "item_stat")
}

func TestItemDetail_UnknownCode(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(http.MethodGet, "/api/items/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
