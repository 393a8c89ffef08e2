// Package economy implements the character economy engine: purchase,
// sale, equip, unequip and earn operations with per-operation atomic
// transactions over the character, inventory, equipment and ledger state.
package economy

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/kasuganosora/itemsim/catalog"
	"github.com/kasuganosora/itemsim/config"
	"github.com/kasuganosora/itemsim/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxLineCount caps the count of a single purchase line. Anything above
// is a malformed or hostile request; a wrapped total could otherwise
// pass the balance check.
const maxLineCount = 1000

// PurchaseLine is one requested (item, count) pair of a purchase.
type PurchaseLine struct {
	ItemCode int `json:"item_code" binding:"required"`
	Count    int `json:"count"`
}

// InventoryLine is one grouped row of the inventory listing.
type InventoryLine struct {
	ItemCode int    `json:"item_code"`
	ItemName string `json:"item_name"`
	Count    int    `json:"count"`
}

// EquippedLine is one row of the equipped-items listing.
type EquippedLine struct {
	ItemCode int    `json:"item_code"`
	ItemName string `json:"item_name"`
}

// Engine orchestrates the catalog, inventory, equipment and ledger into
// atomic operations. It is the sole writer of the cross-entity
// invariants: money never negative, at most one equipped instance per
// item code, stats always base plus equipped bonuses.
type Engine struct {
	db         *gorm.DB
	stores     StoreFactory
	catalog    catalog.Lookup
	earnAmount int64
	sellRate   float64
	logger     *zap.Logger
}

// NewEngine creates an Engine. The StoreFactory binds the store
// contracts to each operation's transaction; production callers pass
// NewGormStores.
func NewEngine(db *gorm.DB, stores StoreFactory, cat catalog.Lookup, game config.GameConfig, logger *zap.Logger) *Engine {
	earn := game.EarnAmount
	if earn <= 0 {
		earn = 100
	}
	rate := game.SellRate
	if rate <= 0 || rate >= 1 {
		rate = 0.6
	}
	return &Engine{
		db:         db,
		stores:     stores,
		catalog:    cat,
		earnAmount: earn,
		sellRate:   rate,
		logger:     logger,
	}
}

// transact runs fn inside one transaction after loading the character
// and verifying ownership. Any error rolls the whole operation back.
func (e *Engine) transact(ctx context.Context, charID, accountID int64, fn func(s Stores, char *model.Character) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := e.stores(tx)
		char, err := s.GetCharacter(ctx, charID)
		if err != nil {
			return err
		}
		if char == nil {
			return notFoundf("character %d not found", charID)
		}
		if char.AccountID != accountID {
			return authorizationf("character %d does not belong to this account", charID)
		}
		return fn(s, char)
	})
}

// Purchase buys the requested items in one atomic unit: all item codes
// must resolve, the balance must cover the full total, and the funds
// check and decrement are a single conditional update. Returns the
// post-purchase balance.
func (e *Engine) Purchase(ctx context.Context, charID, accountID int64, lines []PurchaseLine) (int64, error) {
	if len(lines) == 0 {
		return 0, conflictf("no items requested")
	}
	var money int64
	err := e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		var totalCost int64
		resolved := make([]PurchaseLine, 0, len(lines))
		for _, line := range lines {
			count := line.Count
			if count <= 0 {
				count = 1
			}
			if count > maxLineCount {
				return conflictf("count for item %d exceeds the limit of %d", line.ItemCode, maxLineCount)
			}
			item, err := e.catalog.GetItem(ctx, line.ItemCode)
			if errors.Is(err, catalog.ErrItemNotFound) {
				return notFoundf("item code %d not found", line.ItemCode)
			}
			if err != nil {
				return err
			}
			cost := item.Price * int64(count)
			if item.Price > 0 && (cost/item.Price != int64(count) || totalCost > math.MaxInt64-cost) {
				// A wrapped total would turn the conditional decrement
				// into a credit.
				return conflictf("purchase total out of range")
			}
			totalCost += cost
			resolved = append(resolved, PurchaseLine{ItemCode: line.ItemCode, Count: count})
		}

		ok, err := s.SpendMoney(ctx, charID, totalCost)
		if err != nil {
			return err
		}
		if !ok {
			return insufficientFunds("not enough money")
		}
		for _, line := range resolved {
			if err := s.AddInventory(ctx, charID, line.ItemCode, line.Count); err != nil {
				return err
			}
		}

		char, err := s.GetCharacter(ctx, charID)
		if err != nil {
			return err
		}
		money = char.Money
		return nil
	})
	return money, err
}

// Sell sells one inventory copy per requested code, as an all-or-nothing
// batch: every requested unit is validated before any mutation, then one
// aggregate ledger credit is applied and exactly the chosen entries are
// deleted. An item code that is currently equipped cannot be sold even
// if a spare copy sits in the inventory. Returns the final balance.
func (e *Engine) Sell(ctx context.Context, charID, accountID int64, itemCodes []int) (int64, error) {
	if len(itemCodes) == 0 {
		return 0, conflictf("no items requested")
	}
	var money int64
	err := e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		entries, err := s.ListInventory(ctx, charID)
		if err != nil {
			return err
		}
		free := make(map[int][]int64, len(entries))
		for _, entry := range entries {
			free[entry.ItemCode] = append(free[entry.ItemCode], entry.ID)
		}

		var total int64
		chosen := make([]int64, 0, len(itemCodes))
		for _, code := range itemCodes {
			ids := free[code]
			if len(ids) == 0 {
				return conflictf("item %d is not in the inventory", code)
			}
			eq, err := s.FindEquipped(ctx, charID, code)
			if err != nil {
				return err
			}
			if eq != nil {
				return conflictf("item %d cannot be sold while equipped", code)
			}
			item, err := e.catalog.GetItem(ctx, code)
			if errors.Is(err, catalog.ErrItemNotFound) {
				return notFoundf("item code %d not found", code)
			}
			if err != nil {
				return err
			}
			total += e.salePrice(item.Price)
			chosen = append(chosen, ids[0])
			free[code] = ids[1:]
		}

		removed, err := s.RemoveInventory(ctx, chosen)
		if err != nil {
			return err
		}
		if removed != int64(len(chosen)) {
			// Another transaction consumed one of the entries.
			e.logger.Warn("sell aborted, inventory changed mid-batch",
				zap.Int64("char_id", charID))
			return conflictf("inventory changed during sale")
		}
		if err := s.AdjustMoney(ctx, charID, total); err != nil {
			return err
		}

		char, err := s.GetCharacter(ctx, charID)
		if err != nil {
			return err
		}
		money = char.Money
		return nil
	})
	return money, err
}

// salePrice is the buy-back value: floor(price * rate), rounded down so
// repeated buy/sell can never create money.
func (e *Engine) salePrice(price int64) int64 {
	return int64(math.Floor(float64(price) * e.sellRate))
}

// Equip consumes one inventory copy of itemCode, creates the equipped
// record and applies the item's stat bonuses, all in one transaction.
func (e *Engine) Equip(ctx context.Context, charID, accountID int64, itemCode int) error {
	return e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		entry, err := s.FindInventory(ctx, charID, itemCode)
		if err != nil {
			return err
		}
		if entry == nil {
			return conflictf("item %d is not in the inventory", itemCode)
		}
		eq, err := s.FindEquipped(ctx, charID, itemCode)
		if err != nil {
			return err
		}
		if eq != nil {
			return conflictf("item %d is already equipped", itemCode)
		}
		item, err := e.catalog.GetItem(ctx, itemCode)
		if errors.Is(err, catalog.ErrItemNotFound) {
			return notFoundf("item code %d not found", itemCode)
		}
		if err != nil {
			return err
		}

		if err := s.AdjustStats(ctx, charID, item.HealthBonus, item.PowerBonus); err != nil {
			return err
		}
		if err := s.AddEquipped(ctx, charID, itemCode); err != nil {
			// The unique index on (char_id, item_code) catches the race
			// where two equips of the same code pass the check above;
			// exactly one wins.
			if isUniqueViolation(err) {
				return conflictf("item %d is already equipped", itemCode)
			}
			return err
		}
		removed, err := s.RemoveInventory(ctx, []int64{entry.ID})
		if err != nil {
			return err
		}
		if removed != 1 {
			return conflictf("item %d is not in the inventory", itemCode)
		}
		return nil
	})
}

// Unequip is the exact inverse of Equip: the stat bonuses are reverted,
// the equipped record removed and one inventory copy recreated, so an
// Equip/Unequip pair is a no-op on stats, money and counts.
func (e *Engine) Unequip(ctx context.Context, charID, accountID int64, itemCode int) error {
	return e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		eq, err := s.FindEquipped(ctx, charID, itemCode)
		if err != nil {
			return err
		}
		if eq == nil {
			return conflictf("item %d is not equipped", itemCode)
		}
		item, err := e.catalog.GetItem(ctx, itemCode)
		if errors.Is(err, catalog.ErrItemNotFound) {
			return notFoundf("item code %d not found", itemCode)
		}
		if err != nil {
			return err
		}

		if err := s.AdjustStats(ctx, charID, -item.HealthBonus, -item.PowerBonus); err != nil {
			return err
		}
		removed, err := s.RemoveEquipped(ctx, eq.ID)
		if err != nil {
			return err
		}
		if removed != 1 {
			return conflictf("item %d is not equipped", itemCode)
		}
		return s.AddInventory(ctx, charID, itemCode, 1)
	})
}

// EarnMoney credits the fixed payout and returns the new balance. No
// upper bound is enforced.
func (e *Engine) EarnMoney(ctx context.Context, charID, accountID int64) (int64, error) {
	var money int64
	err := e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		if err := s.AdjustMoney(ctx, charID, e.earnAmount); err != nil {
			return err
		}
		char, err := s.GetCharacter(ctx, charID)
		if err != nil {
			return err
		}
		money = char.Money
		return nil
	})
	return money, err
}

// Inventory returns the owner-only inventory listing, grouped by item
// code. Entries whose catalog definition has been removed are skipped.
func (e *Engine) Inventory(ctx context.Context, charID, accountID int64) ([]InventoryLine, error) {
	var lines []InventoryLine
	err := e.transact(ctx, charID, accountID, func(s Stores, _ *model.Character) error {
		entries, err := s.ListInventory(ctx, charID)
		if err != nil {
			return err
		}
		counts := make(map[int]int, len(entries))
		order := make([]int, 0, len(entries))
		for _, entry := range entries {
			if counts[entry.ItemCode] == 0 {
				order = append(order, entry.ItemCode)
			}
			counts[entry.ItemCode]++
		}

		lines = make([]InventoryLine, 0, len(order))
		for _, code := range order {
			item, err := e.catalog.GetItem(ctx, code)
			if errors.Is(err, catalog.ErrItemNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			lines = append(lines, InventoryLine{
				ItemCode: code,
				ItemName: item.Name,
				Count:    counts[code],
			})
		}
		return nil
	})
	return lines, err
}

// Equipped returns the equipped-items listing. It is public: no
// ownership check, only character existence.
func (e *Engine) Equipped(ctx context.Context, charID int64) ([]EquippedLine, error) {
	s := e.stores(e.db)
	char, err := s.GetCharacter(ctx, charID)
	if err != nil {
		return nil, err
	}
	if char == nil {
		return nil, notFoundf("character %d not found", charID)
	}
	eqs, err := s.ListEquipped(ctx, charID)
	if err != nil {
		return nil, err
	}
	lines := make([]EquippedLine, 0, len(eqs))
	for _, eq := range eqs {
		item, err := e.catalog.GetItem(ctx, eq.ItemCode)
		if errors.Is(err, catalog.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, EquippedLine{ItemCode: eq.ItemCode, ItemName: item.Name})
	}
	return lines, nil
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
