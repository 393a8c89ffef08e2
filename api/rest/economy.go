package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemsim/audit"
	"github.com/kasuganosora/itemsim/economy"
	mw "github.com/kasuganosora/itemsim/middleware"
)

// EconomyHandler exposes the economy engine operations over HTTP.
type EconomyHandler struct {
	engine *economy.Engine
	audit  *audit.Service
}

// NewEconomyHandler creates a new EconomyHandler.
func NewEconomyHandler(engine *economy.Engine, auditSvc *audit.Service) *EconomyHandler {
	return &EconomyHandler{engine: engine, audit: auditSvc}
}

// statusOf maps an economy error kind to its HTTP status.
func statusOf(err error) int {
	switch economy.KindOf(err) {
	case economy.KindAuthorization:
		return http.StatusForbidden
	case economy.KindNotFound:
		return http.StatusNotFound
	case economy.KindConflict, economy.KindInsufficientFunds:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response, hiding internal error details.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"message": msg})
}

func charIDParam(c *gin.Context) (int64, bool) {
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return charID, true
}

// record sends one audit entry for a mutating economy operation.
func (h *EconomyHandler) record(c *gin.Context, start time.Time, charID int64, action string, req, resp interface{}, opErr error) {
	accountID := mw.GetAccountID(c)
	errMsg := ""
	if opErr != nil {
		errMsg = opErr.Error()
	}
	h.audit.Log(audit.Entry{
		TraceID:    mw.GetTraceID(c),
		AccountID:  &accountID,
		CharID:     &charID,
		Action:     action,
		Request:    req,
		Response:   resp,
		Error:      errMsg,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	})
}

// Purchase handles POST /api/characters/:id/purchase.
func (h *EconomyHandler) Purchase(c *gin.Context) {
	start := time.Now()
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	var lines []economy.PurchaseLine
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	money, err := h.engine.Purchase(c.Request.Context(), charID, mw.GetAccountID(c), lines)
	h.record(c, start, charID, "purchase", lines, gin.H{"money": money}, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "items purchased", "money": money})
}

type sellLine struct {
	ItemCode int `json:"item_code" binding:"required"`
}

// Sell handles POST /api/characters/:id/sell.
func (h *EconomyHandler) Sell(c *gin.Context) {
	start := time.Now()
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	var lines []sellLine
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	codes := make([]int, len(lines))
	for i, line := range lines {
		codes[i] = line.ItemCode
	}

	money, err := h.engine.Sell(c.Request.Context(), charID, mw.GetAccountID(c), codes)
	h.record(c, start, charID, "sell", lines, gin.H{"money": money}, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "items sold", "money": money})
}

type equipRequest struct {
	ItemCode int `json:"item_code" binding:"required"`
}

// Equip handles POST /api/characters/:id/equip.
func (h *EconomyHandler) Equip(c *gin.Context) {
	start := time.Now()
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.engine.Equip(c.Request.Context(), charID, mw.GetAccountID(c), req.ItemCode)
	h.record(c, start, charID, "equip", req, nil, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item equipped"})
}

// Unequip handles POST /api/characters/:id/unequip.
func (h *EconomyHandler) Unequip(c *gin.Context) {
	start := time.Now()
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.engine.Unequip(c.Request.Context(), charID, mw.GetAccountID(c), req.ItemCode)
	h.record(c, start, charID, "unequip", req, nil, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item unequipped"})
}

// EarnMoney handles POST /api/characters/:id/earn-money.
func (h *EconomyHandler) EarnMoney(c *gin.Context) {
	start := time.Now()
	charID, ok := charIDParam(c)
	if !ok {
		return
	}

	money, err := h.engine.EarnMoney(c.Request.Context(), charID, mw.GetAccountID(c))
	h.record(c, start, charID, "earn_money", nil, gin.H{"money": money}, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "money earned", "money": money})
}

// Inventory handles GET /api/characters/:id/inventory.
func (h *EconomyHandler) Inventory(c *gin.Context) {
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	lines, err := h.engine.Inventory(c.Request.Context(), charID, mw.GetAccountID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// Equipped handles GET /api/characters/:id/equipped. Public.
func (h *EconomyHandler) Equipped(c *gin.Context) {
	charID, ok := charIDParam(c)
	if !ok {
		return
	}
	lines, err := h.engine.Equipped(c.Request.Context(), charID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}
