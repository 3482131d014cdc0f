package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type SellerInput struct {
	Name           string  `json:"name"`
	CommissionRate float64 `json:"commissionRate"`
}

type SellerService struct {
	Sellers *repos.SellerRepo
	Now     func() time.Time
}

func NewSellerService(sellers *repos.SellerRepo) *SellerService {
	return &SellerService{Sellers: sellers, Now: time.Now}
}

func (s *SellerService) Create(ctx context.Context, businessID string, in SellerInput) (*domain.Seller, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("seller name is required")
	}
	if !validate.Percent(in.CommissionRate) {
		return nil, invalid("commission rate %.2f outside 0..100", in.CommissionRate)
	}
	seller := domain.Seller{
		ID:             uuid.NewString(),
		BusinessID:     businessID,
		Name:           name,
		CommissionRate: in.CommissionRate,
		IsActive:       true,
		CreatedAt:      s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Sellers.Create(ctx, seller); err != nil {
		return nil, err
	}
	return &seller, nil
}

func (s *SellerService) Get(ctx context.Context, id string) (*domain.Seller, error) {
	seller, err := s.Sellers.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "seller", id)
	}
	return seller, nil
}

func (s *SellerService) List(ctx context.Context, businessID string) ([]domain.Seller, error) {
	return s.Sellers.ListByBusiness(ctx, businessID)
}

// owned loads a seller and hides it from other tenants.
func (s *SellerService) owned(ctx context.Context, scope Scope, id string) (*domain.Seller, error) {
	seller, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.owns(seller.BusinessID) {
		return nil, fmt.Errorf("%w: seller %s", ErrNotFound, id)
	}
	return seller, nil
}

// PayoutSummary totals delivered orders: gross, platform commission and seller payout.
func (s *SellerService) PayoutSummary(ctx context.Context, scope Scope, sellerID string) (repos.PayoutSummary, error) {
	if _, err := s.owned(ctx, scope, sellerID); err != nil {
		return repos.PayoutSummary{}, err
	}
	return s.Sellers.PayoutSummary(ctx, sellerID)
}
