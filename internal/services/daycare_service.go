package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"petcare/internal/domain"
	"petcare/internal/metrics"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type PackageInput struct {
	Name         string  `json:"name"`
	DaysIncluded int     `json:"daysIncluded"`
	Price        float64 `json:"price"`
	ValidityDays int     `json:"validityDays"`
}

type EnrollInput struct {
	PackageID string `json:"packageId"`
	PetID     string `json:"petId"`
	StartDate string `json:"startDate"`
}

// DaycareService is the prepaid credit ledger: one credit per attended day.
type DaycareService struct {
	DB      *sqlx.DB
	Daycare *repos.DaycareRepo
	Now     func() time.Time
}

func NewDaycareService(db *sqlx.DB) *DaycareService {
	return &DaycareService{DB: db, Daycare: repos.NewDaycareRepo(db), Now: time.Now}
}

func (s *DaycareService) today() string { return s.Now().UTC().Format(validate.DateLayout) }

// day defaults an empty date to today and validates the rest.
func (s *DaycareService) day(date string) (string, error) {
	if date == "" {
		return s.today(), nil
	}
	d, ok := validate.Date(date)
	if !ok {
		return "", invalid("invalid date %q", date)
	}
	return d.Format(validate.DateLayout), nil
}

func (s *DaycareService) CreatePackage(ctx context.Context, businessID string, in PackageInput) (*domain.DaycarePackage, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("package name is required")
	}
	if in.DaysIncluded < 1 {
		return nil, invalid("package must include at least one day")
	}
	if !validate.Money(in.Price) {
		return nil, invalid("price must be non-negative")
	}
	if in.ValidityDays < 0 {
		return nil, invalid("validity days must be non-negative")
	}
	p := domain.DaycarePackage{
		ID:           uuid.NewString(),
		BusinessID:   businessID,
		Name:         name,
		DaysIncluded: in.DaysIncluded,
		Price:        in.Price,
		ValidityDays: in.ValidityDays,
		IsActive:     true,
		CreatedAt:    s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Daycare.CreatePackage(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Enroll sells a package: credits and price are copied from the package.
func (s *DaycareService) Enroll(ctx context.Context, businessID string, in EnrollInput) (*domain.DaycareEnrollment, error) {
	petID, ok := validate.ID(in.PetID)
	if !ok {
		return nil, invalid("pet id is required")
	}
	start, err := s.day(in.StartDate)
	if err != nil {
		return nil, err
	}
	p, err := s.Daycare.Package(ctx, businessID, in.PackageID)
	if err != nil {
		return nil, notFound(err, "package", in.PackageID)
	}
	if !p.IsActive {
		return nil, invalid("package %s is not active", p.Name)
	}
	e := domain.DaycareEnrollment{
		ID:               uuid.NewString(),
		BusinessID:       businessID,
		PackageID:        p.ID,
		PetID:            petID,
		TotalCredits:     p.DaysIncluded,
		UsedCredits:      0,
		RemainingCredits: p.DaysIncluded,
		PricePaid:        p.Price,
		StartDate:        start,
		CreatedAt:        s.Now().UTC().Format(time.RFC3339),
	}
	if p.ValidityDays > 0 {
		d, _ := validate.Date(start)
		exp := d.AddDate(0, 0, p.ValidityDays).Format(validate.DateLayout)
		e.ExpiresAt = &exp
	}
	if err := s.Daycare.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *DaycareService) GetEnrollment(ctx context.Context, businessID, id string) (*domain.DaycareEnrollment, error) {
	e, err := s.Daycare.Enrollment(ctx, businessID, id)
	if err != nil {
		return nil, notFound(err, "enrollment", id)
	}
	return e, nil
}

// CheckIn records attendance for the date and spends one credit. A repeated
// check-in for the same date returns the existing record without spending.
func (s *DaycareService) CheckIn(ctx context.Context, businessID, enrollmentID, date string) (*domain.DaycareAttendance, error) {
	day, err := s.day(date)
	if err != nil {
		return nil, err
	}
	result := "ok"
	var att *domain.DaycareAttendance
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		daycare := s.Daycare.WithTx(tx)
		e, err := daycare.Enrollment(ctx, businessID, enrollmentID)
		if err != nil {
			return notFound(err, "enrollment", enrollmentID)
		}
		if day < e.StartDate {
			return invalid("enrollment %s starts on %s", e.ID, e.StartDate)
		}
		if e.ExpiresAt != nil && day >= *e.ExpiresAt {
			return invalid("enrollment %s expired on %s", e.ID, *e.ExpiresAt)
		}

		a := domain.DaycareAttendance{
			ID:           uuid.NewString(),
			BusinessID:   businessID,
			EnrollmentID: e.ID,
			Date:         day,
			CheckInTime:  s.Now().UTC().Format(time.RFC3339),
			Status:       domain.AttendancePresent,
		}
		inserted, err := daycare.InsertAttendance(ctx, a)
		if err != nil {
			return err
		}
		if !inserted {
			result = "duplicate"
			att, err = daycare.Attendance(ctx, e.ID, day)
			return err
		}
		ok, err := daycare.ConsumeCredit(ctx, e.ID)
		if err != nil {
			return err
		}
		if !ok {
			result = "no_credits"
			return fmt.Errorf("%w: enrollment %s has 0 of %d credits left", ErrInsufficientCredits, e.ID, e.TotalCredits)
		}
		att = &a
		return nil
	})
	if err != nil && result != "no_credits" {
		return nil, err
	}
	metrics.DaycareCheckIns.WithLabelValues(result).Inc()
	if err != nil {
		return nil, err
	}
	return att, nil
}

// CheckOut stamps the departure for the date; without a check-in it is NotFound.
func (s *DaycareService) CheckOut(ctx context.Context, businessID, enrollmentID, date string) (*domain.DaycareAttendance, error) {
	day, err := s.day(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetEnrollment(ctx, businessID, enrollmentID); err != nil {
		return nil, err
	}
	if _, err := s.Daycare.Attendance(ctx, enrollmentID, day); err != nil {
		return nil, notFound(err, fmt.Sprintf("check-in on %s for enrollment", day), enrollmentID)
	}
	if _, err := s.Daycare.CheckOut(ctx, enrollmentID, day, s.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return s.Daycare.Attendance(ctx, enrollmentID, day)
}

func (s *DaycareService) Attendance(ctx context.Context, businessID, enrollmentID string) ([]domain.DaycareAttendance, error) {
	if _, err := s.GetEnrollment(ctx, businessID, enrollmentID); err != nil {
		return nil, err
	}
	return s.Daycare.AttendanceList(ctx, enrollmentID)
}
