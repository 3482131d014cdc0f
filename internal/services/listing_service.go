package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type ListingInput struct {
	Title       string  `json:"title"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (in *ListingInput) validate() error {
	var ok bool
	if in.Title, ok = validate.Name(in.Title); !ok {
		return invalid("listing title is required")
	}
	in.SKU = strings.TrimSpace(in.SKU)
	in.Description = strings.TrimSpace(in.Description)
	if !validate.Money(in.Price) {
		return invalid("price must be non-negative")
	}
	if in.Stock < 0 {
		return invalid("stock must be non-negative")
	}
	return nil
}

type ListingService struct {
	Sellers  *SellerService
	Listings *repos.ListingRepo
	Inv      *repos.InventoryRepo
	Now      func() time.Time
}

func NewListingService(sellers *SellerService, listings *repos.ListingRepo, inv *repos.InventoryRepo) *ListingService {
	return &ListingService{Sellers: sellers, Listings: listings, Inv: inv, Now: time.Now}
}

// Create adds a DRAFT listing under a seller of the caller's business.
func (s *ListingService) Create(ctx context.Context, scope Scope, sellerID string, in ListingInput) (*domain.Listing, error) {
	if _, err := s.Sellers.owned(ctx, scope, sellerID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.Now().UTC().Format(time.RFC3339)
	l := domain.Listing{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		Title:       in.Title,
		SKU:         in.SKU,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      domain.ListingDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Listings.Create(ctx, l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.Listings.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing", id)
	}
	return l, nil
}

func (s *ListingService) owned(ctx context.Context, scope Scope, id string) (*domain.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Sellers.owned(ctx, scope, l.SellerID); err != nil {
		return nil, fmt.Errorf("%w: listing %s", ErrNotFound, id)
	}
	return l, nil
}

// Update overwrites title, sku, description, price and stock. Existing orders
// keep their line snapshots. If stock changed since the listing was read the
// edit is refused with ErrConflict so sold units are never put back.
func (s *ListingService) Update(ctx context.Context, scope Scope, id string, in ListingInput) (*domain.Listing, error) {
	l, err := s.owned(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	readStock := l.Stock
	l.Title, l.SKU, l.Description, l.Price, l.Stock = in.Title, in.SKU, in.Description, in.Price, in.Stock
	l.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
	ok, err := s.Listings.Update(ctx, *l, readStock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: stock of listing %s changed, reload and retry", ErrConflict, id)
	}
	return l, nil
}

func (s *ListingService) SubmitForReview(ctx context.Context, scope Scope, id string) (*domain.Listing, error) {
	if _, err := s.owned(ctx, scope, id); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, domain.ListingPendingReview)
}

// Approve publishes a listing (platform staff only).
func (s *ListingService) Approve(ctx context.Context, id string) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ListingActive)
}

func (s *ListingService) Reject(ctx context.Context, id string) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ListingRejected)
}

func (s *ListingService) transition(ctx context.Context, id, to string) (*domain.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionListing(l.Status, to) {
		return nil, invalid("listing %s cannot move from %s to %s", id, l.Status, to)
	}
	ok, err := s.Listings.SetStatus(ctx, id, to, l.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing %s changed status concurrently", ErrConflict, id)
	}
	l.Status = to
	return l, nil
}

// Search lists active listings matching q; an empty q lists everything active.
func (s *ListingService) Search(ctx context.Context, q string, limit int) ([]domain.Listing, error) {
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			return nil, invalid("invalid search query")
		}
	}
	out, err := s.Listings.Search(ctx, q, limit)
	if out == nil {
		out = []domain.Listing{}
	}
	return out, err
}

// Availability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *ListingService) Availability(ctx context.Context, id string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{}, fmt.Errorf("%w: listing %s", ErrNotFound, id)
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= 5:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}
