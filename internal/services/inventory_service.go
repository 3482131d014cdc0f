package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"petcare/internal/domain"
	"petcare/internal/metrics"
	"petcare/internal/repos"
)

type MoveInput struct {
	ProductID   string  `json:"productId"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"referenceId,omitempty"`
}

// InventoryService is the retail stock ledger: every change of a product's
// on-hand quantity is written together with a movement row.
type InventoryService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Now      func() time.Time
}

func NewInventoryService(db *sqlx.DB) *InventoryService {
	return &InventoryService{DB: db, Products: repos.NewProductRepo(db), Now: time.Now}
}

func (s *InventoryService) Move(ctx context.Context, businessID string, in MoveInput) (*domain.StockMovement, error) {
	var m *domain.StockMovement
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		m, err = s.move(ctx, tx, businessID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// move applies one movement inside the caller's transaction.
func (s *InventoryService) move(ctx context.Context, tx *sqlx.Tx, businessID string, in MoveInput) (*domain.StockMovement, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if !domain.IsMovementType(in.Type) {
		return nil, invalid("unknown movement type %q", in.Type)
	}
	if in.Quantity < 1 {
		return nil, invalid("movement quantity must be at least 1")
	}

	products := s.Products.WithTx(tx)
	p, err := products.Get(ctx, businessID, in.ProductID)
	if err != nil {
		return nil, notFound(err, "product", in.ProductID)
	}

	delta := in.Quantity
	if !domain.IsIncreasingMovement(in.Type) {
		delta = -in.Quantity
		if p.CurrentStock < in.Quantity {
			return nil, fmt.Errorf("%w: product %s (%s) requested %d, available %d",
				ErrInsufficientStock, p.ID, p.Name, in.Quantity, p.CurrentStock)
		}
	}
	newStock, err := products.Adjust(ctx, businessID, p.ID, delta)
	if errors.Is(err, repos.ErrStockConflict) {
		metrics.StockConflicts.WithLabelValues("product").Inc()
		return nil, fmt.Errorf("%w: stock of product %s (%s) changed during %s of %d",
			ErrConflict, p.ID, p.Name, in.Type, in.Quantity)
	}
	if err != nil {
		return nil, err
	}

	m := domain.StockMovement{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		ProductID:     p.ID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		PreviousStock: newStock - delta,
		NewStock:      newStock,
		Reason:        strings.TrimSpace(in.Reason),
		ReferenceID:   in.ReferenceID,
		CreatedAt:     s.Now().UTC().Format(time.RFC3339),
	}
	if err := products.InsertMovement(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *InventoryService) Movements(ctx context.Context, businessID, productID string) ([]domain.StockMovement, error) {
	if _, err := s.Products.Get(ctx, businessID, productID); err != nil {
		return nil, notFound(err, "product", productID)
	}
	return s.Products.Movements(ctx, businessID, productID)
}
