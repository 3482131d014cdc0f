package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"petcare/internal/domain"
	"petcare/internal/metrics"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type OrderLine struct {
	ListingID string `json:"listingId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderLine `json:"items"`
	BuyerName       string      `json:"buyerName"`
	BuyerEmail      string      `json:"buyerEmail"`
	BuyerPhone      string      `json:"buyerPhone"`
	ShippingAddress string      `json:"shippingAddress"`
	ShippingCost    float64     `json:"shippingCost"`
	Discount        float64     `json:"discount"`
	PaymentMethod   string      `json:"paymentMethod"`
}

type StatusInput struct {
	Status       string `json:"status"`
	TrackingCode string `json:"trackingCode"`
}

// Scope identifies who is acting: a business user, or platform staff.
type Scope struct {
	BusinessID string
	Admin      bool
}

func (s Scope) owns(businessID string) bool { return s.Admin || s.BusinessID == businessID }

const orderNumberAttempts = 5

var orderSuffixCharset = []rune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

type OrderService struct {
	DB       *sqlx.DB
	Sellers  *repos.SellerRepo
	Listings *repos.ListingRepo
	Inv      *repos.InventoryRepo
	Orders   *repos.OrderRepo
	Now      func() time.Time
}

func NewOrderService(db *sqlx.DB) *OrderService {
	return &OrderService{
		DB:       db,
		Sellers:  repos.NewSellerRepo(db),
		Listings: repos.NewListingRepo(db),
		Inv:      repos.NewInventoryRepo(db),
		Orders:   repos.NewOrderRepo(db),
		Now:      time.Now,
	}
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return invalid("cart is empty")
	}
	for _, it := range in.Items {
		if _, ok := validate.ID(it.ListingID); !ok {
			return invalid("invalid listing id %q", it.ListingID)
		}
		if !validate.Qty(it.Quantity) {
			return invalid("quantity %d for listing %s must be between 1 and 1000", it.Quantity, it.ListingID)
		}
	}
	var ok bool
	if in.BuyerName, ok = validate.Name(in.BuyerName); !ok {
		return invalid("buyer name is required")
	}
	if in.BuyerEmail, ok = validate.Email(in.BuyerEmail); !ok {
		return invalid("invalid buyer email")
	}
	if in.BuyerPhone != "" {
		if in.BuyerPhone, ok = validate.Phone(in.BuyerPhone); !ok {
			return invalid("invalid buyer phone")
		}
	}
	if !validate.Money(in.ShippingCost) || !validate.Money(in.Discount) {
		return invalid("shipping cost and discount must be non-negative")
	}
	in.PaymentMethod = strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if !domain.IsPaymentMethod(in.PaymentMethod) {
		return invalid("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

// Create prices the cart against live listings and persists the order, its
// line snapshots and the stock decrements in one transaction.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.MarketplaceOrder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	// duplicate lines for the same listing are merged
	qty := map[string]int{}
	for _, it := range in.Items {
		qty[it.ListingID] += it.Quantity
	}
	ids := lo.Uniq(lo.Map(in.Items, func(it OrderLine, _ int) string { return it.ListingID }))

	var order *domain.MarketplaceOrder
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		listings, err := s.Listings.WithTx(tx).GetMany(ctx, ids)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(listings, func(l domain.Listing) string { return l.ID })

		lines := make([]PricedLine, 0, len(ids))
		for _, id := range ids {
			l, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: listing %s", ErrNotFound, id)
			}
			if l.Status != domain.ListingActive {
				return invalid("listing %s (%s) is not available for sale", l.ID, l.Title)
			}
			if l.Stock < qty[id] {
				return fmt.Errorf("%w: listing %s (%s) requested %d, available %d",
					ErrInsufficientStock, l.ID, l.Title, qty[id], l.Stock)
			}
			lines = append(lines, PricedLine{Quantity: qty[id], UnitPrice: l.Price})
		}

		sellerIDs := lo.Uniq(lo.Map(listings, func(l domain.Listing, _ int) string { return l.SellerID }))
		if len(sellerIDs) != 1 {
			return invalid("cart spans multiple sellers")
		}
		seller, err := s.Sellers.WithTx(tx).Get(ctx, sellerIDs[0])
		if err != nil {
			return notFound(err, "seller", sellerIDs[0])
		}
		if !seller.IsActive {
			return invalid("seller %s is not active", seller.ID)
		}

		totals, err := PriceOrder(lines, in.ShippingCost, in.Discount, seller.CommissionRate)
		if err != nil {
			return err
		}

		orders := s.Orders.WithTx(tx)
		number, err := s.orderNumber(ctx, orders)
		if err != nil {
			return err
		}

		now := s.Now().UTC()
		o := domain.MarketplaceOrder{
			ID:              uuid.NewString(),
			OrderNumber:     number,
			SellerID:        seller.ID,
			BuyerName:       in.BuyerName,
			BuyerEmail:      in.BuyerEmail,
			BuyerPhone:      in.BuyerPhone,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			Subtotal:        totals.Subtotal,
			ShippingCost:    totals.Shipping,
			Discount:        totals.Discount,
			TotalAmount:     totals.Total,
			Commission:      totals.Commission,
			SellerPayout:    totals.SellerPayout,
			PaymentMethod:   in.PaymentMethod,
			Status:          domain.OrderPending,
			CreatedAt:       now.Format(time.RFC3339),
		}
		if err := orders.Create(ctx, o); err != nil {
			return err
		}

		inv := s.Inv.WithTx(tx)
		for i, id := range ids {
			l := byID[id]
			item := domain.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    o.ID,
				ListingID:  l.ID,
				Title:      l.Title,
				SKU:        l.SKU,
				Quantity:   lines[i].Quantity,
				UnitPrice:  l.Price,
				TotalPrice: domain.Round2(float64(lines[i].Quantity) * l.Price),
			}
			if err := orders.InsertItem(ctx, item); err != nil {
				return err
			}
			if err := inv.Decrement(ctx, l.ID, item.Quantity); err != nil {
				if errors.Is(err, repos.ErrStockConflict) {
					metrics.StockConflicts.WithLabelValues("listing").Inc()
					return fmt.Errorf("%w: stock of listing %s (%s) changed while ordering %d",
						ErrConflict, l.ID, l.Title, item.Quantity)
				}
				return err
			}
			o.Items = append(o.Items, item)
		}
		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	return order, nil
}

// orderNumber builds "MP" + epoch millis + 4 base36 chars and checks it is unused.
func (s *OrderService) orderNumber(ctx context.Context, orders *repos.OrderRepo) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		n := "MP" + strconv.FormatInt(s.Now().UnixMilli(), 10) + lo.RandomString(4, orderSuffixCharset)
		taken, err := orders.NumberExists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique order number", ErrConflict)
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.MarketplaceOrder, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return o, nil
}

// ListBySeller returns the seller's orders when the seller belongs to the business.
func (s *OrderService) ListBySeller(ctx context.Context, scope Scope, sellerID string) ([]domain.MarketplaceOrder, error) {
	seller, err := s.Sellers.Get(ctx, sellerID)
	if err != nil {
		return nil, notFound(err, "seller", sellerID)
	}
	if !scope.owns(seller.BusinessID) {
		return nil, fmt.Errorf("%w: seller %s", ErrNotFound, sellerID)
	}
	return s.Orders.ListBySeller(ctx, sellerID)
}

// UpdateStatus walks the order lifecycle. Totals are never rewritten; a
// cancellation before shipment returns the units to stock.
func (s *OrderService) UpdateStatus(ctx context.Context, scope Scope, orderID string, in StatusInput) (*domain.MarketplaceOrder, error) {
	to := strings.ToUpper(strings.TrimSpace(in.Status))
	var out *domain.MarketplaceOrder
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := s.Orders.WithTx(tx)
		o, err := orders.Get(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		seller, err := s.Sellers.WithTx(tx).Get(ctx, o.SellerID)
		if err != nil {
			return notFound(err, "seller", o.SellerID)
		}
		if !scope.owns(seller.BusinessID) {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		if !domain.CanTransitionOrder(o.Status, to) {
			return invalid("order %s cannot move from %s to %s", o.OrderNumber, o.Status, to)
		}

		now := s.Now().UTC().Format(time.RFC3339)
		ch := repos.StatusChange{From: o.Status, To: to}
		switch to {
		case domain.OrderShipped:
			ch.ShippedAt = &now
			if code := strings.TrimSpace(in.TrackingCode); code != "" {
				ch.TrackingCode = &code
			}
		case domain.OrderDelivered:
			ch.DeliveredAt = &now
		case domain.OrderCancelled:
			ch.CancelledAt = &now
		}
		ok, err := orders.UpdateStatus(ctx, o.ID, ch)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order %s changed status concurrently", ErrConflict, o.OrderNumber)
		}

		if to == domain.OrderCancelled && o.Status == domain.OrderPending {
			inv := s.Inv.WithTx(tx)
			for _, it := range o.Items {
				if err := inv.Restock(ctx, it.ListingID, it.Quantity); err != nil {
					return fmt.Errorf("restock listing %s: %w", it.ListingID, err)
				}
			}
		}

		out, err = orders.Get(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
