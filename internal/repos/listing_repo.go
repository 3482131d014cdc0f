package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ListingRepo struct{ db sqlx.ExtContext }

func NewListingRepo(db sqlx.ExtContext) *ListingRepo { return &ListingRepo{db: db} }

func (r *ListingRepo) WithTx(tx *sqlx.Tx) *ListingRepo { return &ListingRepo{db: tx} }

const listingCols = `id,seller_id,title,sku,description,price,stock,sales_count,status,average_rating,total_reviews,created_at,updated_at`

func (r *ListingRepo) Create(ctx context.Context, l domain.Listing) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO marketplace_listings(`+listingCols+`)
		VALUES(?,?,?,?,?,?,?,0,?,0,0,?,?)`,
		l.ID, l.SellerID, l.Title, l.SKU, l.Description, l.Price, l.Stock, l.Status, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *ListingRepo) Get(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := get(ctx, r.db, &l, `SELECT `+listingCols+` FROM marketplace_listings WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetMany loads the listings named by ids; missing ids are simply absent from the result.
func (r *ListingRepo) GetMany(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+listingCols+` FROM marketplace_listings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.Listing
	err = sel(ctx, r.db, &out, query, args...)
	return out, err
}

// Update overwrites the editable fields only while stock still equals
// expectStock. False means an order or restock moved it in between.
func (r *ListingRepo) Update(ctx context.Context, l domain.Listing, expectStock int) (bool, error) {
	return execOne(ctx, r.db, `
		UPDATE marketplace_listings
		SET title=?, sku=?, description=?, price=?, stock=?, updated_at=?
		WHERE id=? AND stock=?`,
		l.Title, l.SKU, l.Description, l.Price, l.Stock, l.UpdatedAt, l.ID, expectStock)
}

// SetStatus moves a listing only if it is still in one of the from states.
func (r *ListingRepo) SetStatus(ctx context.Context, id, to string, from ...string) (bool, error) {
	query, args, err := sqlx.In(`
		UPDATE marketplace_listings SET status=?, updated_at=?
		WHERE id=? AND status IN (?)`, to, stamp(), id, from)
	if err != nil {
		return false, err
	}
	return execOne(ctx, r.db, query, args...)
}

// Search lists ACTIVE listings whose title or sku contains q (case-insensitive).
func (r *ListingRepo) Search(ctx context.Context, q string, limit int) ([]domain.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	like := "%" + q + "%"
	var out []domain.Listing
	err := sel(ctx, r.db, &out, `
		SELECT `+listingCols+`
		FROM marketplace_listings
		WHERE status = ? AND (LOWER(title) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))
		ORDER BY sales_count DESC, title
		LIMIT ?`, domain.ListingActive, like, like, limit)
	return out, err
}

func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := sel(ctx, r.db, &out, `SELECT `+listingCols+` FROM marketplace_listings WHERE seller_id=? ORDER BY created_at DESC`, sellerID)
	return out, err
}

func (r *ListingRepo) RecomputeRating(ctx context.Context, listingID string) error {
	var agg ratingAgg
	if err := get(ctx, r.db, &agg, `
		SELECT COUNT(*) AS n, COALESCE(AVG(rating),0) AS avg
		FROM marketplace_reviews
		WHERE listing_id=? AND is_published = TRUE`, listingID); err != nil {
		return err
	}
	_, err := exec(ctx, r.db, `UPDATE marketplace_listings SET average_rating=?, total_reviews=? WHERE id=?`,
		domain.Round2(agg.Avg), agg.N, listingID)
	return err
}
