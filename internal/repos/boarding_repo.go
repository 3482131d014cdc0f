package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BoardingRepo struct{ db sqlx.ExtContext }

func NewBoardingRepo(db sqlx.ExtContext) *BoardingRepo { return &BoardingRepo{db: db} }

func (r *BoardingRepo) WithTx(tx *sqlx.Tx) *BoardingRepo { return &BoardingRepo{db: tx} }

const (
	roomCols     = `id,business_id,name,capacity,daily_rate,accepted_species,accepted_sizes,is_active,created_at`
	boardingCols = `id,business_id,room_id,pet_id,pet_species,pet_size,check_in_date,check_out_date,occupied_until,total_days,
	daily_rate,subtotal,discount,extra_services,total_amount,status,actual_check_in,actual_check_out,notes,created_at`
)

// ---------- Rooms ----------

func (r *BoardingRepo) CreateRoom(ctx context.Context, rm domain.BoardingRoom) error {
	_, err := exec(ctx, r.db, `INSERT INTO boarding_rooms(`+roomCols+`) VALUES(?,?,?,?,?,?,?,?,?)`,
		rm.ID, rm.BusinessID, rm.Name, rm.Capacity, rm.DailyRate, rm.AcceptedSpecies, rm.AcceptedSizes, rm.IsActive, rm.CreatedAt)
	return err
}

func (r *BoardingRepo) Room(ctx context.Context, businessID, id string) (*domain.BoardingRoom, error) {
	var rm domain.BoardingRoom
	err := get(ctx, r.db, &rm, `SELECT `+roomCols+` FROM boarding_rooms WHERE id=? AND business_id=?`, id, businessID)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *BoardingRepo) Rooms(ctx context.Context, businessID string) ([]domain.BoardingRoom, error) {
	out := []domain.BoardingRoom{}
	err := sel(ctx, r.db, &out, `SELECT `+roomCols+` FROM boarding_rooms WHERE business_id=? ORDER BY name`, businessID)
	return out, err
}

// ---------- Stays ----------

func (r *BoardingRepo) Create(ctx context.Context, b domain.Boarding) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO boardings(`+boardingCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?, ?,?,?,?,?,?,NULL,NULL,?,?)`,
		b.ID, b.BusinessID, b.RoomID, b.PetID, b.PetSpecies, b.PetSize, b.CheckInDate, b.CheckOutDate, b.OccupiedUntil, b.TotalDays,
		b.DailyRate, b.Subtotal, b.Discount, b.ExtraServices, b.TotalAmount, b.Status, b.Notes, b.CreatedAt)
	return err
}

func (r *BoardingRepo) Get(ctx context.Context, businessID, id string) (*domain.Boarding, error) {
	var b domain.Boarding
	err := get(ctx, r.db, &b, `SELECT `+boardingCols+` FROM boardings WHERE id=? AND business_id=?`, id, businessID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CountOverlaps counts blocking stays in the room whose [check_in, occupied_until)
// intersects [start, end).
func (r *BoardingRepo) CountOverlaps(ctx context.Context, roomID, start, end string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `
		SELECT COUNT(*) FROM boardings
		WHERE room_id = ?
		  AND status IN (?, ?)
		  AND check_in_date < ?
		  AND occupied_until > ?`,
		roomID, domain.BoardingReserved, domain.BoardingCheckedIn, end, start)
	return n, err
}

// CountCheckedIn counts pets physically in the room right now.
func (r *BoardingRepo) CountCheckedIn(ctx context.Context, roomID string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM boardings WHERE room_id=? AND status=?`, roomID, domain.BoardingCheckedIn)
	return n, err
}

func (r *BoardingRepo) CountActive(ctx context.Context, businessID string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM boardings WHERE business_id=? AND status=?`, businessID, domain.BoardingCheckedIn)
	return n, err
}

// Transition moves a stay from one status to another, stamping the actual
// check-in/out time when given.
func (r *BoardingRepo) Transition(ctx context.Context, id, from, to string, checkIn, checkOut *string) (bool, error) {
	return execOne(ctx, r.db, `
		UPDATE boardings
		SET status = ?,
		    actual_check_in  = COALESCE(?, actual_check_in),
		    actual_check_out = COALESCE(?, actual_check_out)
		WHERE id = ? AND status = ?`, to, checkIn, checkOut, id, from)
}
