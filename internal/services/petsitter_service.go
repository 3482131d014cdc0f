package services

import (
	"context"
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

type SitterInput struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	DailyRate float64 `json:"dailyRate"`
}

type BookingInput struct {
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	PetID       string `json:"petId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type SitterReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// PetSitterService runs the sitter marketplace with a fixed 10/90 platform split.
type PetSitterService struct {
	DB      *sqlx.DB
	Sitters *repos.PetSitterRepo
	Now     func() time.Time
}

func NewPetSitterService(db *sqlx.DB) *PetSitterService {
	return &PetSitterService{DB: db, Sitters: repos.NewPetSitterRepo(db), Now: time.Now}
}

func (s *PetSitterService) Register(ctx context.Context, in SitterInput) (*domain.PetSitter, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("sitter name is required")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, invalid("invalid sitter email")
	}
	if !validate.Money(in.DailyRate) {
		return nil, invalid("daily rate must be non-negative")
	}
	ps := domain.PetSitter{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(email),
		DailyRate: in.DailyRate,
		IsActive:  true,
		CreatedAt: s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Sitters.Create(ctx, ps); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: sitter %s already registered", ErrConflict, ps.Email)
		}
		return nil, err
	}
	return &ps, nil
}

func (s *PetSitterService) Get(ctx context.Context, id string) (*domain.PetSitter, error) {
	ps, err := s.Sitters.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "pet sitter", id)
	}
	return ps, nil
}

// CreateBooking prices whole days at the sitter's rate, minimum one day.
func (s *PetSitterService) CreateBooking(ctx context.Context, sitterID string, in BookingInput) (*domain.PetSitterBooking, error) {
	client, ok := validate.Name(in.ClientName)
	if !ok {
		return nil, invalid("client name is required")
	}
	email, ok := validate.Email(in.ClientEmail)
	if !ok {
		return nil, invalid("invalid client email")
	}
	start, ok := validate.Date(in.StartDate)
	if !ok {
		return nil, invalid("invalid start date %q", in.StartDate)
	}
	end, ok := validate.Date(in.EndDate)
	if !ok {
		return nil, invalid("invalid end date %q", in.EndDate)
	}
	ps, err := s.Get(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	if !ps.IsActive {
		return nil, invalid("pet sitter %s is not accepting bookings", ps.Name)
	}
	totals, err := PriceStay(start, end, ps.DailyRate, 0, 0)
	if err != nil {
		return nil, err
	}
	fee, payout := SplitSitterBooking(totals.Total)
	b := domain.PetSitterBooking{
		ID:           uuid.NewString(),
		SitterID:     ps.ID,
		ClientName:   client,
		ClientEmail:  email,
		PetID:        strings.TrimSpace(in.PetID),
		StartDate:    start.Format(validate.DateLayout),
		EndDate:      end.Format(validate.DateLayout),
		TotalDays:    totals.TotalDays,
		DailyRate:    ps.DailyRate,
		TotalAmount:  totals.Total,
		PlatformFee:  fee,
		SitterPayout: payout,
		Status:       domain.BookingPending,
		CreatedAt:    s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Sitters.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PetSitterService) UpdateBookingStatus(ctx context.Context, bookingID, status string) (*domain.PetSitterBooking, error) {
	to := strings.ToUpper(strings.TrimSpace(status))
	b, err := s.Sitters.Booking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if !domain.CanTransitionBooking(b.Status, to) {
		return nil, invalid("booking %s cannot move from %s to %s", bookingID, b.Status, to)
	}
	ok, err := s.Sitters.SetBookingStatus(ctx, bookingID, b.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking %s changed status concurrently", ErrConflict, bookingID)
	}
	b.Status = to
	return b, nil
}

// Review accepts one rating per completed booking and refreshes the sitter average.
func (s *PetSitterService) Review(ctx context.Context, bookingID string, in SitterReviewInput) (*domain.SitterReview, error) {
	if !validate.Rating(in.Rating) {
		return nil, invalid("rating %d must be between 1 and 5", in.Rating)
	}
	var rv domain.SitterReview
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sitters := s.Sitters.WithTx(tx)
		b, err := sitters.Booking(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.Status != domain.BookingCompleted {
			return invalid("booking %s is %s; only completed bookings can be reviewed", b.ID, b.Status)
		}
		rv = domain.SitterReview{
			ID:        uuid.NewString(),
			SitterID:  b.SitterID,
			BookingID: b.ID,
			Rating:    in.Rating,
			Comment:   strings.TrimSpace(in.Comment),
			CreatedAt: s.Now().UTC().Format(time.RFC3339),
		}
		if err := sitters.CreateReview(ctx, rv); err != nil {
			if repos.IsUniqueViolation(err) {
				return fmt.Errorf("%w: booking %s already reviewed", ErrConflict, b.ID)
			}
			return err
		}
		return sitters.RecomputeRating(ctx, b.SitterID)
	})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// CreatePayout batches every completed, unpaid booking of the sitter.
func (s *PetSitterService) CreatePayout(ctx context.Context, sitterID string) (*domain.SitterPayout, error) {
	var p domain.SitterPayout
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sitters := s.Sitters.WithTx(tx)
		if _, err := sitters.Get(ctx, sitterID); err != nil {
			return notFound(err, "pet sitter", sitterID)
		}
		bookings, err := sitters.UnpaidCompleted(ctx, sitterID)
		if err != nil {
			return err
		}
		if len(bookings) == 0 {
			return invalid("pet sitter %s has no completed bookings awaiting payout", sitterID)
		}
		p = domain.SitterPayout{
			ID:            uuid.NewString(),
			SitterID:      sitterID,
			Amount:        domain.Round2(lo.SumBy(bookings, func(b domain.PetSitterBooking) float64 { return b.SitterPayout })),
			BookingsCount: len(bookings),
			CreatedAt:     s.Now().UTC().Format(time.RFC3339),
		}
		if err := sitters.CreatePayout(ctx, p); err != nil {
			return err
		}
		n, err := sitters.AttachPayout(ctx, p.ID, lo.Map(bookings, func(b domain.PetSitterBooking, _ int) string { return b.ID }))
		if err != nil {
			return err
		}
		if int(n) != len(bookings) {
			return fmt.Errorf("%w: bookings of sitter %s were paid concurrently", ErrConflict, sitterID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
