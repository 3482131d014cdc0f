package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type DaycareRepo struct{ db sqlx.ExtContext }

func NewDaycareRepo(db sqlx.ExtContext) *DaycareRepo { return &DaycareRepo{db: db} }

func (r *DaycareRepo) WithTx(tx *sqlx.Tx) *DaycareRepo { return &DaycareRepo{db: tx} }

const (
	packageCols    = `id,business_id,name,days_included,price,validity_days,is_active,created_at`
	enrollmentCols = `id,business_id,package_id,pet_id,total_credits,used_credits,remaining_credits,price_paid,start_date,expires_at,created_at`
	attendanceCols = `id,business_id,enrollment_id,date,check_in_time,check_out_time,status`
)

func (r *DaycareRepo) CreatePackage(ctx context.Context, p domain.DaycarePackage) error {
	_, err := exec(ctx, r.db, `INSERT INTO daycare_packages(`+packageCols+`) VALUES(?,?,?,?,?,?,?,?)`,
		p.ID, p.BusinessID, p.Name, p.DaysIncluded, p.Price, p.ValidityDays, p.IsActive, p.CreatedAt)
	return err
}

func (r *DaycareRepo) Package(ctx context.Context, businessID, id string) (*domain.DaycarePackage, error) {
	var p domain.DaycarePackage
	err := get(ctx, r.db, &p, `SELECT `+packageCols+` FROM daycare_packages WHERE id=? AND business_id=?`, id, businessID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DaycareRepo) CreateEnrollment(ctx context.Context, e domain.DaycareEnrollment) error {
	_, err := exec(ctx, r.db, `INSERT INTO daycare_enrollments(`+enrollmentCols+`) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.BusinessID, e.PackageID, e.PetID, e.TotalCredits, e.UsedCredits, e.RemainingCredits,
		e.PricePaid, e.StartDate, e.ExpiresAt, e.CreatedAt)
	return err
}

func (r *DaycareRepo) Enrollment(ctx context.Context, businessID, id string) (*domain.DaycareEnrollment, error) {
	var e domain.DaycareEnrollment
	err := get(ctx, r.db, &e, `SELECT `+enrollmentCols+` FROM daycare_enrollments WHERE id=? AND business_id=?`, id, businessID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertAttendance records a check-in; false means the day was already recorded.
func (r *DaycareRepo) InsertAttendance(ctx context.Context, a domain.DaycareAttendance) (bool, error) {
	return execOne(ctx, r.db, `
		INSERT INTO daycare_attendance(`+attendanceCols+`)
		VALUES(?,?,?,?,?,NULL,?)
		ON CONFLICT(enrollment_id, date) DO NOTHING`,
		a.ID, a.BusinessID, a.EnrollmentID, a.Date, a.CheckInTime, a.Status)
}

func (r *DaycareRepo) Attendance(ctx context.Context, enrollmentID, date string) (*domain.DaycareAttendance, error) {
	var a domain.DaycareAttendance
	err := get(ctx, r.db, &a, `SELECT `+attendanceCols+` FROM daycare_attendance WHERE enrollment_id=? AND date=?`, enrollmentID, date)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *DaycareRepo) AttendanceList(ctx context.Context, enrollmentID string) ([]domain.DaycareAttendance, error) {
	out := []domain.DaycareAttendance{}
	err := sel(ctx, r.db, &out, `SELECT `+attendanceCols+` FROM daycare_attendance WHERE enrollment_id=? ORDER BY date`, enrollmentID)
	return out, err
}

// ConsumeCredit spends one credit if any remain.
func (r *DaycareRepo) ConsumeCredit(ctx context.Context, enrollmentID string) (bool, error) {
	return execOne(ctx, r.db, `
		UPDATE daycare_enrollments
		SET used_credits = used_credits + 1, remaining_credits = remaining_credits - 1
		WHERE id = ? AND remaining_credits > 0`, enrollmentID)
}

// CheckOut stamps the departure once.
func (r *DaycareRepo) CheckOut(ctx context.Context, enrollmentID, date, at string) (bool, error) {
	return execOne(ctx, r.db, `
		UPDATE daycare_attendance SET check_out_time = ?
		WHERE enrollment_id = ? AND date = ? AND check_out_time IS NULL`, at, enrollmentID, date)
}

func (r *DaycareRepo) CountAttendance(ctx context.Context, businessID, date string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM daycare_attendance WHERE business_id=? AND date=?`, businessID, date)
	return n, err
}
