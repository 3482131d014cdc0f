package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderCols = `id,order_number,seller_id,buyer_name,buyer_email,buyer_phone,shipping_address,
	subtotal,shipping_cost,discount,total_amount,commission,seller_payout,payment_method,status,
	tracking_code,shipped_at,delivered_at,cancelled_at,created_at`

// Create inserts a new order header.
func (r *OrderRepo) Create(ctx context.Context, o domain.MarketplaceOrder) error {
	_, err := exec(ctx, r.db, `
	  INSERT INTO marketplace_orders(`+orderCols+`)
	  VALUES (?,?,?,?,?,?,?, ?,?,?,?,?,?,?,?, NULL,NULL,NULL,NULL,?)`,
		o.ID, o.OrderNumber, o.SellerID, o.BuyerName, o.BuyerEmail, o.BuyerPhone, o.ShippingAddress,
		o.Subtotal, o.ShippingCost, o.Discount, o.TotalAmount, o.Commission, o.SellerPayout, o.PaymentMethod, o.Status,
		o.CreatedAt)
	return err
}

// InsertItem inserts a single price-snapshot line.
func (r *OrderRepo) InsertItem(ctx context.Context, it domain.OrderItem) error {
	_, err := exec(ctx, r.db, `
	  INSERT INTO marketplace_order_items(id, order_id, listing_id, title, sku, quantity, unit_price, total_price)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.OrderID, it.ListingID, it.Title, it.SKU, it.Quantity, it.UnitPrice, it.TotalPrice)
	return err
}

func (r *OrderRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int
	if err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM marketplace_orders WHERE order_number=?`, number); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the order header with its lines.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.MarketplaceOrder, error) {
	var o domain.MarketplaceOrder
	if err := get(ctx, r.db, &o, `SELECT `+orderCols+` FROM marketplace_orders WHERE id = ?`, id); err != nil {
		return nil, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := sel(ctx, r.db, &items, `
		SELECT id, order_id, listing_id, title, sku, quantity, unit_price, total_price
		FROM marketplace_order_items
		WHERE order_id = ?
		ORDER BY title`, orderID)
	return items, err
}

func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.MarketplaceOrder, error) {
	out := []domain.MarketplaceOrder{}
	err := sel(ctx, r.db, &out, `
		SELECT `+orderCols+`
		FROM marketplace_orders
		WHERE seller_id = ?
		ORDER BY created_at DESC`, sellerID)
	return out, err
}

// StatusChange carries the columns stamped by a transition.
type StatusChange struct {
	From, To     string
	TrackingCode *string
	ShippedAt    *string
	DeliveredAt  *string
	CancelledAt  *string
}

// UpdateStatus applies a transition only if the order is still in From.
// Timestamps left nil keep their stored value.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, ch StatusChange) (bool, error) {
	return execOne(ctx, r.db, `
		UPDATE marketplace_orders
		SET status = ?,
		    tracking_code = COALESCE(?, tracking_code),
		    shipped_at    = COALESCE(?, shipped_at),
		    delivered_at  = COALESCE(?, delivered_at),
		    cancelled_at  = COALESCE(?, cancelled_at)
		WHERE id = ? AND status = ?`,
		ch.To, ch.TrackingCode, ch.ShippedAt, ch.DeliveredAt, ch.CancelledAt, id, ch.From)
}

// CountPendingForBusiness counts PENDING orders of every seller the business owns.
func (r *OrderRepo) CountPendingForBusiness(ctx context.Context, businessID string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `
		SELECT COUNT(*)
		FROM marketplace_orders o
		JOIN marketplace_sellers s ON s.id = o.seller_id
		WHERE s.business_id = ? AND o.status = ?`, businessID, domain.OrderPending)
	return n, err
}

// DeliveredRevenueForBusiness sums seller payouts of delivered orders.
func (r *OrderRepo) DeliveredRevenueForBusiness(ctx context.Context, businessID string) (float64, error) {
	var v float64
	err := get(ctx, r.db, &v, `
		SELECT COALESCE(SUM(o.seller_payout),0)
		FROM marketplace_orders o
		JOIN marketplace_sellers s ON s.id = o.seller_id
		WHERE s.business_id = ? AND o.status = ?`, businessID, domain.OrderDelivered)
	return domain.Round2(v), err
}
