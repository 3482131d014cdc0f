package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db sqlx.ExtContext }

func NewReviewRepo(db sqlx.ExtContext) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) WithTx(tx *sqlx.Tx) *ReviewRepo { return &ReviewRepo{db: tx} }

func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO marketplace_reviews(id,listing_id,seller_id,author_name,rating,comment,is_published,created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		rv.ID, rv.ListingID, rv.SellerID, rv.AuthorName, rv.Rating, rv.Comment, rv.IsPublished, rv.CreatedAt)
	return err
}

func (r *ReviewRepo) Get(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := get(ctx, r.db, &rv, `
		SELECT id,listing_id,seller_id,author_name,rating,comment,is_published,created_at
		FROM marketplace_reviews WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) SetPublished(ctx context.Context, id string, published bool) error {
	_, err := exec(ctx, r.db, `UPDATE marketplace_reviews SET is_published=? WHERE id=?`, published, id)
	return err
}

func (r *ReviewRepo) ListByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := sel(ctx, r.db, &out, `
		SELECT id,listing_id,seller_id,author_name,rating,comment,is_published,created_at
		FROM marketplace_reviews
		WHERE listing_id=? AND is_published = TRUE
		ORDER BY created_at DESC`, listingID)
	return out, err
}
