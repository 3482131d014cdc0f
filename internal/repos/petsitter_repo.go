package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PetSitterRepo struct{ db sqlx.ExtContext }

func NewPetSitterRepo(db sqlx.ExtContext) *PetSitterRepo { return &PetSitterRepo{db: db} }

func (r *PetSitterRepo) WithTx(tx *sqlx.Tx) *PetSitterRepo { return &PetSitterRepo{db: tx} }

const (
	sitterCols  = `id,name,email,daily_rate,average_rating,total_reviews,is_active,created_at`
	bookingCols = `id,sitter_id,client_name,client_email,pet_id,start_date,end_date,total_days,daily_rate,
	total_amount,platform_fee,sitter_payout,status,payout_id,created_at`
)

func (r *PetSitterRepo) Create(ctx context.Context, s domain.PetSitter) error {
	_, err := exec(ctx, r.db, `INSERT INTO pet_sitters(`+sitterCols+`) VALUES(?,?,?,?,0,0,?,?)`,
		s.ID, s.Name, s.Email, s.DailyRate, s.IsActive, s.CreatedAt)
	return err
}

func (r *PetSitterRepo) Get(ctx context.Context, id string) (*domain.PetSitter, error) {
	var s domain.PetSitter
	if err := get(ctx, r.db, &s, `SELECT `+sitterCols+` FROM pet_sitters WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---------- Bookings ----------

func (r *PetSitterRepo) CreateBooking(ctx context.Context, b domain.PetSitterBooking) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO pet_sitter_bookings(`+bookingCols+`)
		VALUES(?,?,?,?,?,?,?,?,?, ?,?,?,?,NULL,?)`,
		b.ID, b.SitterID, b.ClientName, b.ClientEmail, b.PetID, b.StartDate, b.EndDate, b.TotalDays, b.DailyRate,
		b.TotalAmount, b.PlatformFee, b.SitterPayout, b.Status, b.CreatedAt)
	return err
}

func (r *PetSitterRepo) Booking(ctx context.Context, id string) (*domain.PetSitterBooking, error) {
	var b domain.PetSitterBooking
	if err := get(ctx, r.db, &b, `SELECT `+bookingCols+` FROM pet_sitter_bookings WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PetSitterRepo) SetBookingStatus(ctx context.Context, id, from, to string) (bool, error) {
	return execOne(ctx, r.db, `UPDATE pet_sitter_bookings SET status=? WHERE id=? AND status=?`, to, id, from)
}

// UnpaidCompleted lists completed bookings not yet attached to a payout.
func (r *PetSitterRepo) UnpaidCompleted(ctx context.Context, sitterID string) ([]domain.PetSitterBooking, error) {
	out := []domain.PetSitterBooking{}
	err := sel(ctx, r.db, &out, `
		SELECT `+bookingCols+` FROM pet_sitter_bookings
		WHERE sitter_id=? AND status=? AND payout_id IS NULL
		ORDER BY start_date`, sitterID, domain.BookingCompleted)
	return out, err
}

// ---------- Payouts ----------

func (r *PetSitterRepo) CreatePayout(ctx context.Context, p domain.SitterPayout) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO pet_sitter_payouts(id,sitter_id,amount,bookings_count,created_at)
		VALUES(?,?,?,?,?)`, p.ID, p.SitterID, p.Amount, p.BookingsCount, p.CreatedAt)
	return err
}

// AttachPayout marks the bookings as paid; it returns how many rows were still unpaid.
func (r *PetSitterRepo) AttachPayout(ctx context.Context, payoutID string, bookingIDs []string) (int64, error) {
	if len(bookingIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE pet_sitter_bookings SET payout_id=?
		WHERE payout_id IS NULL AND id IN (?)`, payoutID, bookingIDs)
	if err != nil {
		return 0, err
	}
	res, err := exec(ctx, r.db, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------- Reviews ----------

func (r *PetSitterRepo) CreateReview(ctx context.Context, rv domain.SitterReview) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO pet_sitter_reviews(id,sitter_id,booking_id,rating,comment,created_at)
		VALUES(?,?,?,?,?,?)`, rv.ID, rv.SitterID, rv.BookingID, rv.Rating, rv.Comment, rv.CreatedAt)
	return err
}

func (r *PetSitterRepo) RecomputeRating(ctx context.Context, sitterID string) error {
	var agg ratingAgg
	if err := get(ctx, r.db, &agg, `
		SELECT COUNT(*) AS n, COALESCE(AVG(rating),0) AS avg
		FROM pet_sitter_reviews WHERE sitter_id=?`, sitterID); err != nil {
		return err
	}
	_, err := exec(ctx, r.db, `UPDATE pet_sitters SET average_rating=?, total_reviews=? WHERE id=?`,
		domain.Round2(agg.Avg), agg.N, sitterID)
	return err
}
