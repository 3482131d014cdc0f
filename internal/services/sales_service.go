package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type SaleLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type SaleInput struct {
	Items         []SaleLine `json:"items"`
	Discount      float64    `json:"discount"`
	PaymentMethod string     `json:"paymentMethod"`
	Date          string     `json:"date"`
}

// SalesService records point-of-sale tickets. Each line is also a SALE
// movement on the retail stock ledger.
type SalesService struct {
	DB        *sqlx.DB
	Sales     *repos.SaleRepo
	Products  *repos.ProductRepo
	Inventory *InventoryService
	Now       func() time.Time
}

func NewSalesService(db *sqlx.DB, inventory *InventoryService) *SalesService {
	return &SalesService{
		DB:        db,
		Sales:     repos.NewSaleRepo(db),
		Products:  repos.NewProductRepo(db),
		Inventory: inventory,
		Now:       time.Now,
	}
}

func (s *SalesService) Create(ctx context.Context, businessID string, in SaleInput) (*domain.Sale, error) {
	if len(in.Items) == 0 {
		return nil, invalid("sale has no items")
	}
	for _, it := range in.Items {
		if !validate.Qty(it.Quantity) {
			return nil, invalid("quantity %d for product %s must be between 1 and 1000", it.Quantity, it.ProductID)
		}
	}
	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if !domain.IsPaymentMethod(method) {
		return nil, invalid("unknown payment method %q", in.PaymentMethod)
	}
	if !validate.Money(in.Discount) {
		return nil, invalid("discount must be non-negative")
	}
	date := s.Now().UTC().Format(validate.DateLayout)
	if in.Date != "" {
		d, ok := validate.Date(in.Date)
		if !ok {
			return nil, invalid("invalid sale date %q", in.Date)
		}
		date = d.Format(validate.DateLayout)
	}

	qty := map[string]int{}
	for _, it := range in.Items {
		qty[it.ProductID] += it.Quantity
	}
	ids := lo.Uniq(lo.Map(in.Items, func(it SaleLine, _ int) string { return it.ProductID }))

	var sale domain.Sale
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sales := s.Sales.WithTx(tx)
		if _, err := sales.Register(ctx, businessID, date); err == nil {
			return fmt.Errorf("%w: cash register for %s is already closed", ErrConflict, date)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		products, err := s.Products.WithTx(tx).GetMany(ctx, businessID, ids)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(products, func(p domain.Product) string { return p.ID })

		items := make([]domain.SaleItem, 0, len(ids))
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: product %s", ErrNotFound, id)
			}
			if !p.IsActive {
				return invalid("product %s (%s) is not active", p.ID, p.Name)
			}
			items = append(items, domain.SaleItem{
				ID:         uuid.NewString(),
				ProductID:  p.ID,
				Name:       p.Name,
				Quantity:   qty[id],
				UnitPrice:  p.Price,
				TotalPrice: domain.Round2(float64(qty[id]) * p.Price),
			})
		}
		subtotal := domain.Round2(lo.SumBy(items, func(it domain.SaleItem) float64 { return it.TotalPrice }))
		if in.Discount > subtotal {
			return invalid("discount %.2f exceeds subtotal %.2f", in.Discount, subtotal)
		}

		sale = domain.Sale{
			ID:            uuid.NewString(),
			BusinessID:    businessID,
			SaleNumber:    "PDV" + strings.ReplaceAll(date, "-", "") + "-" + lo.RandomString(6, orderSuffixCharset),
			SaleDate:      date,
			Subtotal:      subtotal,
			Discount:      in.Discount,
			TotalAmount:   domain.Round2(subtotal - in.Discount),
			PaymentMethod: method,
			CreatedAt:     s.Now().UTC().Format(time.RFC3339),
		}
		if err := sales.Create(ctx, sale); err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
			if err := sales.InsertItem(ctx, items[i]); err != nil {
				return err
			}
			_, err := s.Inventory.move(ctx, tx, businessID, MoveInput{
				ProductID:   items[i].ProductID,
				Type:        domain.MoveSale,
				Quantity:    items[i].Quantity,
				Reason:      "sale " + sale.SaleNumber,
				ReferenceID: &sale.ID,
			})
			if err != nil {
				return err
			}
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns the tickets of one day; an empty date means today.
func (s *SalesService) List(ctx context.Context, businessID, date string) ([]domain.Sale, error) {
	day := s.Now().UTC().Format(validate.DateLayout)
	if date != "" {
		var err error
		if day, err = parseDay(date); err != nil {
			return nil, err
		}
	}
	return s.Sales.ListByDate(ctx, businessID, day)
}
