package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemsim/catalog"
	"github.com/kasuganosora/itemsim/model"
	"gorm.io/gorm"
)

// maxItemPrice caps catalog prices so purchase and sale totals stay far
// from the int64 range even for maximum-count batches.
const maxItemPrice = 1_000_000_000_000

// AdminAuth guards the item-management endpoints with a static admin key.
// An empty configured key disables the endpoints entirely.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" || c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

// ItemHandler handles item catalog REST endpoints. Reads go through the
// catalog Lookup; writes are admin-only and touch the table directly.
type ItemHandler struct {
	db  *gorm.DB
	cat catalog.Lookup
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(db *gorm.DB, cat catalog.Lookup) *ItemHandler {
	return &ItemHandler{db: db, cat: cat}
}

type itemStat struct {
	Health int `json:"health"`
	Power  int `json:"power"`
}

type createItemRequest struct {
	ItemCode int      `json:"item_code" binding:"required"`
	ItemName string   `json:"item_name" binding:"required,max=64"`
	ItemStat itemStat `json:"item_stat"`
	Price    int64    `json:"item_price"`
}

// Create handles POST /api/items (admin).
func (h *ItemHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Price < 0 || req.Price > maxItemPrice {
		c.JSON(http.StatusBadRequest, gin.H{"message": "item_price out of range"})
		return
	}

	item := &model.Item{
		ItemCode:    req.ItemCode,
		Name:        req.ItemName,
		HealthBonus: req.ItemStat.Health,
		PowerBonus:  req.ItemStat.Power,
		Price:       req.Price,
	}
	if err := h.db.Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "item code already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": item.ID})
}

type updateItemRequest struct {
	ItemName string   `json:"item_name" binding:"required,max=64"`
	ItemStat itemStat `json:"item_stat"`
}

// Update handles PUT /api/items/:code (admin).
// Name and stat bonuses are mutable; the price is fixed after creation.
func (h *ItemHandler) Update(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid item code"})
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	res := h.db.Model(&model.Item{}).
		Where("item_code = ?", code).
		Updates(map[string]interface{}{
			"name":         req.ItemName,
			"health_bonus": req.ItemStat.Health,
			"power_bonus":  req.ItemStat.Power,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item updated"})
}

// List handles GET /api/items: code, name and price of every item.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.cat.ListItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	type listEntry struct {
		ItemCode int    `json:"item_code"`
		ItemName string `json:"item_name"`
		Price    int64  `json:"item_price"`
	}
	entries := make([]listEntry, len(items))
	for i, item := range items {
		entries[i] = listEntry{ItemCode: item.ItemCode, ItemName: item.Name, Price: item.Price}
	}
	c.JSON(http.StatusOK, entries)
}

// Detail handles GET /api/items/:code.
func (h *ItemHandler) Detail(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid item code"})
		return
	}
	item, err := h.cat.GetItem(c.Request.Context(), code)
	if errors.Is(err, catalog.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_code":  item.ItemCode,
		"item_name":  item.Name,
		"item_stat":  itemStat{Health: item.HealthBonus, Power: item.PowerBonus},
		"item_price": item.Price,
	})
}
