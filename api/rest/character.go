package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemsim/config"
	mw "github.com/kasuganosora/itemsim/middleware"
	"github.com/kasuganosora/itemsim/model"
	"gorm.io/gorm"
)

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	db   *gorm.DB
	game config.GameConfig
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB, game config.GameConfig) *CharacterHandler {
	return &CharacterHandler{db: db, game: game}
}

type createCharacterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}

// Create handles POST /api/characters.
// New characters start with the fixed base stats.
func (h *CharacterHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	maxChars := h.game.MaxCharacters
	if maxChars > 0 {
		var existing []model.Character
		if err := h.db.Select("id").Where("account_id = ?", accountID).Find(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		if len(existing) >= maxChars {
			c.JSON(http.StatusBadRequest, gin.H{"message": "max characters reached"})
			return
		}
	}

	char := &model.Character{
		AccountID: accountID,
		Name:      req.Name,
		Health:    model.BaseHealth,
		Power:     model.BasePower,
		Money:     model.BaseMoney,
	}
	if err := h.db.Create(char).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "character name already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, char)
}

// List handles GET /api/characters.
func (h *CharacterHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	var chars []model.Character
	if err := h.db.Where("account_id = ?", accountID).Find(&chars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": chars})
}

// Detail handles GET /api/characters/:id.
// The money field is only included for the owning account.
func (h *CharacterHandler) Detail(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	var char model.Character
	if err := h.db.Where("id = ?", charID).First(&char).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	resp := gin.H{
		"name":   char.Name,
		"health": char.Health,
		"power":  char.Power,
	}
	if char.AccountID == accountID {
		resp["money"] = char.Money
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/characters/:id.
// Deletion cascades to the character's inventory and equipment rows in
// the same transaction.
func (h *CharacterHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}

	var char model.Character
	if err := h.db.Where("id = ?", charID).First(&char).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}
	if char.AccountID != accountID {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your character"})
		return
	}

	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("char_id = ?", charID).Delete(&model.InventoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("char_id = ?", charID).Delete(&model.EquippedItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Character{}, charID).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "character deleted"})
}
