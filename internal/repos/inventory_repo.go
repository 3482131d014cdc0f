package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrStockConflict means a conditional stock update matched no row: either the
// row vanished or the guard (enough stock) no longer held.
var ErrStockConflict = errors.New("stock conditional update matched no row")

// InventoryRepo owns the stock counters of marketplace listings.
type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) WithTx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{db: tx} }

// Qty returns current stock for a listing.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Qty(ctx context.Context, listingID string) (int, error) {
	var qty int
	if err := get(ctx, r.db, &qty, `SELECT stock FROM marketplace_listings WHERE id = ?`, listingID); err != nil {
		return 0, err
	}
	return qty, nil
}

// Decrement atomically subtracts "by" units and counts them as sold if enough stock exists.
func (r *InventoryRepo) Decrement(ctx context.Context, listingID string, by int) error {
	ok, err := execOne(ctx, r.db, `
		UPDATE marketplace_listings
		SET stock = stock - ?, sales_count = sales_count + ?
		WHERE id = ? AND stock >= ?
	`, by, by, listingID, by)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStockConflict
	}
	return nil
}

// Restock is the inverse of Decrement, used when a pending order is cancelled.
func (r *InventoryRepo) Restock(ctx context.Context, listingID string, by int) error {
	ok, err := execOne(ctx, r.db, `
		UPDATE marketplace_listings
		SET stock = stock + ?, sales_count = CASE WHEN sales_count >= ? THEN sales_count - ? ELSE 0 END
		WHERE id = ?
	`, by, by, by, listingID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStockConflict
	}
	return nil
}
