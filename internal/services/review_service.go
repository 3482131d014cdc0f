package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type ReviewInput struct {
	AuthorName string `json:"authorName"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// ReviewService keeps listing and seller rating projections in step with the
// published reviews.
type ReviewService struct {
	DB       *sqlx.DB
	Reviews  *repos.ReviewRepo
	Listings *repos.ListingRepo
	Sellers  *repos.SellerRepo
	Now      func() time.Time
}

func NewReviewService(db *sqlx.DB) *ReviewService {
	return &ReviewService{
		DB:       db,
		Reviews:  repos.NewReviewRepo(db),
		Listings: repos.NewListingRepo(db),
		Sellers:  repos.NewSellerRepo(db),
		Now:      time.Now,
	}
}

func (s *ReviewService) CreateListingReview(ctx context.Context, listingID string, in ReviewInput) (*domain.Review, error) {
	author, ok := validate.Name(in.AuthorName)
	if !ok {
		return nil, invalid("author name is required")
	}
	if !validate.Rating(in.Rating) {
		return nil, invalid("rating %d must be between 1 and 5", in.Rating)
	}
	var rv domain.Review
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		l, err := s.Listings.WithTx(tx).Get(ctx, listingID)
		if err != nil {
			return notFound(err, "listing", listingID)
		}
		rv = domain.Review{
			ID:          uuid.NewString(),
			ListingID:   l.ID,
			SellerID:    l.SellerID,
			AuthorName:  author,
			Rating:      in.Rating,
			Comment:     strings.TrimSpace(in.Comment),
			IsPublished: true,
			CreatedAt:   s.Now().UTC().Format(time.RFC3339),
		}
		if err := s.Reviews.WithTx(tx).Create(ctx, rv); err != nil {
			return err
		}
		return s.recompute(ctx, tx, l.ID, l.SellerID)
	})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// SetPublished hides or shows a review (moderation).
func (s *ReviewService) SetPublished(ctx context.Context, reviewID string, published bool) (*domain.Review, error) {
	var rv *domain.Review
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		reviews := s.Reviews.WithTx(tx)
		var err error
		if rv, err = reviews.Get(ctx, reviewID); err != nil {
			return notFound(err, "review", reviewID)
		}
		if err := reviews.SetPublished(ctx, reviewID, published); err != nil {
			return err
		}
		rv.IsPublished = published
		return s.recompute(ctx, tx, rv.ListingID, rv.SellerID)
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) ListForListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	return s.Reviews.ListByListing(ctx, listingID)
}

func (s *ReviewService) recompute(ctx context.Context, tx *sqlx.Tx, listingID, sellerID string) error {
	if err := s.Listings.WithTx(tx).RecomputeRating(ctx, listingID); err != nil {
		return err
	}
	return s.Sellers.WithTx(tx).RecomputeRating(ctx, sellerID)
}
