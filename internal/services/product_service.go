package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type ProductInput struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Price        float64 `json:"price"`
	InitialStock int     `json:"initialStock"`
	MinStock     int     `json:"minStock"`
}

type ProductService struct {
	Products *repos.ProductRepo
	Now      func() time.Time
}

func NewProductService(products *repos.ProductRepo) *ProductService {
	return &ProductService{Products: products, Now: time.Now}
}

func (s *ProductService) Create(ctx context.Context, businessID string, in ProductInput) (*domain.Product, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("product name is required")
	}
	if !validate.Money(in.Price) {
		return nil, invalid("price must be non-negative")
	}
	if in.InitialStock < 0 || in.MinStock < 0 {
		return nil, invalid("stock levels must be non-negative")
	}
	now := s.Now().UTC().Format(time.RFC3339)
	p := domain.Product{
		ID:           uuid.NewString(),
		BusinessID:   businessID,
		Name:         name,
		SKU:          strings.TrimSpace(in.SKU),
		Price:        in.Price,
		CurrentStock: in.InitialStock,
		MinStock:     in.MinStock,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, businessID, id string) (*domain.Product, error) {
	p, err := s.Products.Get(ctx, businessID, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

// List returns all products, or only those at or below min stock when lowOnly is set.
func (s *ProductService) List(ctx context.Context, businessID string, lowOnly bool) ([]domain.Product, error) {
	if lowOnly {
		return s.LowStock(ctx, businessID)
	}
	return s.Products.List(ctx, businessID)
}

func (s *ProductService) LowStock(ctx context.Context, businessID string) ([]domain.Product, error) {
	return s.Products.LowStock(ctx, businessID)
}
