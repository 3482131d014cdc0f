package repos

import (
	"context"
	"database/sql"
	"errors"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productCols = `id,business_id,name,sku,price,current_stock,min_stock,is_active,created_at,updated_at`

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.BusinessID, p.Name, p.SKU, p.Price, p.CurrentStock, p.MinStock, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

// Get is tenant scoped: a product of another business is sql.ErrNoRows.
func (r *ProductRepo) Get(ctx context.Context, businessID, id string) (*domain.Product, error) {
	var p domain.Product
	err := get(ctx, r.db, &p, `SELECT `+productCols+` FROM products WHERE id=? AND business_id=?`, id, businessID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) GetMany(ctx context.Context, businessID string, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE business_id=? AND id IN (?)`, businessID, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	err = sel(ctx, r.db, &out, query, args...)
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, businessID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sel(ctx, r.db, &out, `SELECT `+productCols+` FROM products WHERE business_id=? ORDER BY name`, businessID)
	return out, err
}

// LowStock lists active products at or below their minimum.
func (r *ProductRepo) LowStock(ctx context.Context, businessID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sel(ctx, r.db, &out, `
		SELECT `+productCols+` FROM products
		WHERE business_id=? AND is_active = TRUE AND current_stock <= min_stock
		ORDER BY current_stock, name`, businessID)
	return out, err
}

// Adjust changes current_stock by delta and returns the new level. A negative
// delta only applies when enough stock remains; otherwise ErrStockConflict.
func (r *ProductRepo) Adjust(ctx context.Context, businessID, id string, delta int) (int, error) {
	var newStock int
	err := get(ctx, r.db, &newStock, `
		UPDATE products
		SET current_stock = current_stock + ?, updated_at = ?
		WHERE id = ? AND business_id = ? AND current_stock + ? >= 0
		RETURNING current_stock`, delta, stamp(), id, businessID, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrStockConflict
	}
	return newStock, err
}

func (r *ProductRepo) InsertMovement(ctx context.Context, m domain.StockMovement) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO stock_movements(id,business_id,product_id,type,quantity,previous_stock,new_stock,reason,reference_id,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.BusinessID, m.ProductID, m.Type, m.Quantity, m.PreviousStock, m.NewStock, m.Reason, m.ReferenceID, m.CreatedAt)
	return err
}

func (r *ProductRepo) Movements(ctx context.Context, businessID, productID string) ([]domain.StockMovement, error) {
	out := []domain.StockMovement{}
	err := sel(ctx, r.db, &out, `
		SELECT id,business_id,product_id,type,quantity,previous_stock,new_stock,reason,reference_id,created_at
		FROM stock_movements
		WHERE business_id=? AND product_id=?
		ORDER BY created_at`, businessID, productID)
	return out, err
}
