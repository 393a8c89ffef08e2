package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemsim/audit"
	"github.com/kasuganosora/itemsim/cache"
	"github.com/kasuganosora/itemsim/catalog"
	"github.com/kasuganosora/itemsim/config"
	"github.com/kasuganosora/itemsim/economy"
	mw "github.com/kasuganosora/itemsim/middleware"
	"github.com/kasuganosora/itemsim/model"
	"github.com/kasuganosora/itemsim/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminKey = "test-admin-key"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	cache  cache.Cache
	router *gin.Engine
	sec    config.SecurityConfig
	rank   *RankingHandler
}

// newTestEnv wires the full route table the way main does, over an
// in-memory DB and local cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: time.Hour}
	game := config.GameConfig{EarnAmount: 100, SellRate: 0.6, MaxCharacters: 3}

	cat := catalog.NewStore(db)
	engine := economy.NewEngine(db, economy.NewGormStores, cat, game, logger)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	authH := NewAuthHandler(db, c, sec)
	charH := NewCharacterHandler(db, game)
	itemH := NewItemHandler(db, cat)
	econH := NewEconomyHandler(engine, auditSvc)
	rankH := NewRankingHandler(db, c, logger)

	r := gin.New()
	r.Use(mw.TraceID())

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/sign-up", authH.SignUp)
		authG.POST("/sign-in", authH.SignIn)
		authG.POST("/logout", mw.Auth(sec, c), authH.Logout)

		api.GET("/items", itemH.List)
		api.GET("/items/:code", itemH.Detail)
		adminG := api.Group("/items")
		adminG.Use(AdminAuth(testAdminKey))
		adminG.POST("", itemH.Create)
		adminG.PUT("/:code", itemH.Update)

		charsG := api.Group("/characters")
		charsG.Use(mw.Auth(sec, c))
		charsG.POST("", charH.Create)
		charsG.GET("", charH.List)
		charsG.GET("/:id", charH.Detail)
		charsG.DELETE("/:id", charH.Delete)
		charsG.POST("/:id/purchase", econH.Purchase)
		charsG.POST("/:id/sell", econH.Sell)
		charsG.POST("/:id/equip", econH.Equip)
		charsG.POST("/:id/unequip", econH.Unequip)
		charsG.POST("/:id/earn-money", econH.EarnMoney)
		charsG.GET("/:id/inventory", econH.Inventory)

		api.GET("/characters/:id/equipped", econH.Equipped)

		rankG := api.Group("/ranking")
		rankG.GET("/money", rankH.TopMoney)
	}

	return &testEnv{t: t, db: db, cache: c, router: r, sec: sec, rank: rankH}
}

// doJSON performs one request against the test router. token and body
// are optional.
func (env *testEnv) doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// adminJSON performs an admin-key request.
func (env *testEnv) adminJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(env.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// signUpAndIn registers a fresh account and returns its token and ID.
func (env *testEnv) signUpAndIn(username string) (token string, accountID int64) {
	env.t.Helper()
	w := env.doJSON(http.MethodPost, "/api/auth/sign-up", "", gin.H{
		"username":         username,
		"password":         "secret123",
		"password_confirm": "secret123",
	})
	require.Equal(env.t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doJSON(http.MethodPost, "/api/auth/sign-in", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(env.t, http.StatusOK, w.Code, w.Body.String())
	body := decode(env.t, w)
	return body["token"].(string), int64(body["account_id"].(float64))
}

// createCharacter makes a character through the API and returns its ID.
func (env *testEnv) createCharacter(token, name string) int64 {
	env.t.Helper()
	w := env.doJSON(http.MethodPost, "/api/characters", token, gin.H{"name": name})
	require.Equal(env.t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decode(env.t, w)["id"].(float64))
}

// seedItem inserts a catalog row directly.
func (env *testEnv) seedItem(code int, name string, hb, pb int, price int64) {
	env.t.Helper()
	require.NoError(env.t, env.db.Create(&model.Item{
		ItemCode:    code,
		Name:        name,
		HealthBonus: hb,
		PowerBonus:  pb,
		Price:       price,
	}).Error)
}
