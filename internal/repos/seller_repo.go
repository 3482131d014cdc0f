package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SellerRepo struct{ db sqlx.ExtContext }

func NewSellerRepo(db sqlx.ExtContext) *SellerRepo { return &SellerRepo{db: db} }

func (r *SellerRepo) WithTx(tx *sqlx.Tx) *SellerRepo { return &SellerRepo{db: tx} }

const sellerCols = `id,business_id,name,commission_rate,average_rating,total_reviews,is_active,created_at`

func (r *SellerRepo) Create(ctx context.Context, s domain.Seller) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO marketplace_sellers(`+sellerCols+`)
		VALUES(?,?,?,?,0,0,?,?)`,
		s.ID, s.BusinessID, s.Name, s.CommissionRate, s.IsActive, s.CreatedAt)
	return err
}

func (r *SellerRepo) Get(ctx context.Context, id string) (*domain.Seller, error) {
	var s domain.Seller
	if err := get(ctx, r.db, &s, `SELECT `+sellerCols+` FROM marketplace_sellers WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SellerRepo) ListByBusiness(ctx context.Context, businessID string) ([]domain.Seller, error) {
	out := []domain.Seller{}
	err := sel(ctx, r.db, &out, `SELECT `+sellerCols+` FROM marketplace_sellers WHERE business_id=? ORDER BY name`, businessID)
	return out, err
}

// RecomputeRating refreshes the aggregate from published reviews only.
func (r *SellerRepo) RecomputeRating(ctx context.Context, sellerID string) error {
	var agg ratingAgg
	if err := get(ctx, r.db, &agg, `
		SELECT COUNT(*) AS n, COALESCE(AVG(rating),0) AS avg
		FROM marketplace_reviews
		WHERE seller_id=? AND is_published = TRUE`, sellerID); err != nil {
		return err
	}
	_, err := exec(ctx, r.db, `UPDATE marketplace_sellers SET average_rating=?, total_reviews=? WHERE id=?`,
		domain.Round2(agg.Avg), agg.N, sellerID)
	return err
}

type ratingAgg struct {
	N   int     `db:"n"`
	Avg float64 `db:"avg"`
}

// PayoutSummary aggregates delivered orders of one seller.
type PayoutSummary struct {
	SellerID     string  `db:"-" json:"sellerId"`
	OrdersCount  int     `db:"orders_count" json:"ordersCount"`
	Gross        float64 `db:"gross" json:"gross"`
	Commission   float64 `db:"commission" json:"commission"`
	SellerPayout float64 `db:"seller_payout" json:"sellerPayout"`
}

func (r *SellerRepo) PayoutSummary(ctx context.Context, sellerID string) (PayoutSummary, error) {
	var p PayoutSummary
	err := get(ctx, r.db, &p, `
		SELECT COUNT(*) AS orders_count,
		       COALESCE(SUM(total_amount),0) AS gross,
		       COALESCE(SUM(commission),0) AS commission,
		       COALESCE(SUM(seller_payout),0) AS seller_payout
		FROM marketplace_orders
		WHERE seller_id=? AND status=?`, sellerID, domain.OrderDelivered)
	p.SellerID = sellerID
	p.Gross = domain.Round2(p.Gross)
	p.Commission = domain.Round2(p.Commission)
	p.SellerPayout = domain.Round2(p.SellerPayout)
	return p, err
}
