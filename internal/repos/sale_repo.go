package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SaleRepo stores point-of-sale tickets and the daily cash register snapshot.
type SaleRepo struct{ db sqlx.ExtContext }

func NewSaleRepo(db sqlx.ExtContext) *SaleRepo { return &SaleRepo{db: db} }

func (r *SaleRepo) WithTx(tx *sqlx.Tx) *SaleRepo { return &SaleRepo{db: tx} }

func (r *SaleRepo) Create(ctx context.Context, s domain.Sale) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO sales(id,business_id,sale_number,sale_date,subtotal,discount,total_amount,payment_method,created_at)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		s.ID, s.BusinessID, s.SaleNumber, s.SaleDate, s.Subtotal, s.Discount, s.TotalAmount, s.PaymentMethod, s.CreatedAt)
	return err
}

func (r *SaleRepo) InsertItem(ctx context.Context, it domain.SaleItem) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO sale_items(id,sale_id,product_id,name,quantity,unit_price,total_price)
		VALUES(?,?,?,?,?,?,?)`,
		it.ID, it.SaleID, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice)
	return err
}

func (r *SaleRepo) ListByDate(ctx context.Context, businessID, date string) ([]domain.Sale, error) {
	out := []domain.Sale{}
	err := sel(ctx, r.db, &out, `
		SELECT id,business_id,sale_number,sale_date,subtotal,discount,total_amount,payment_method,created_at
		FROM sales WHERE business_id=? AND sale_date=?
		ORDER BY created_at`, businessID, date)
	return out, err
}

// Aggregate computes the live register for a date from the sales table.
func (r *SaleRepo) Aggregate(ctx context.Context, businessID, date string) (domain.CashRegister, error) {
	reg := domain.CashRegister{BusinessID: businessID, Date: date}
	err := get(ctx, r.db, &reg, `
		SELECT COUNT(*) AS sales_count,
		       COALESCE(SUM(total_amount),0) AS total_sales,
		       COALESCE(SUM(CASE WHEN payment_method = 'CASH' THEN total_amount ELSE 0 END),0) AS cash_total,
		       COALESCE(SUM(CASE WHEN payment_method = 'CARD' THEN total_amount ELSE 0 END),0) AS card_total,
		       COALESCE(SUM(CASE WHEN payment_method = 'PIX'  THEN total_amount ELSE 0 END),0) AS pix_total,
		       COALESCE(SUM(CASE WHEN payment_method NOT IN ('CASH','CARD','PIX') THEN total_amount ELSE 0 END),0) AS other_total
		FROM sales
		WHERE business_id=? AND sale_date=?`, businessID, date)
	reg.TotalSales = domain.Round2(reg.TotalSales)
	reg.CashTotal = domain.Round2(reg.CashTotal)
	reg.CardTotal = domain.Round2(reg.CardTotal)
	reg.PixTotal = domain.Round2(reg.PixTotal)
	reg.OtherTotal = domain.Round2(reg.OtherTotal)
	return reg, err
}

// Register returns the closed register for a date, or sql.ErrNoRows while the day is open.
func (r *SaleRepo) Register(ctx context.Context, businessID, date string) (*domain.CashRegister, error) {
	var reg domain.CashRegister
	err := get(ctx, r.db, &reg, `
		SELECT id,business_id,date,sales_count,total_sales,cash_total,card_total,pix_total,other_total,is_closed,closed_at
		FROM cash_registers WHERE business_id=? AND date=?`, businessID, date)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// InsertRegister stores the snapshot once; a second close for the same day is a no-op.
func (r *SaleRepo) InsertRegister(ctx context.Context, reg domain.CashRegister) (bool, error) {
	return execOne(ctx, r.db, `
		INSERT INTO cash_registers(id,business_id,date,sales_count,total_sales,cash_total,card_total,pix_total,other_total,is_closed,closed_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(business_id, date) DO NOTHING`,
		reg.ID, reg.BusinessID, reg.Date, reg.SalesCount, reg.TotalSales, reg.CashTotal, reg.CardTotal,
		reg.PixTotal, reg.OtherTotal, reg.IsClosed, reg.ClosedAt)
}
