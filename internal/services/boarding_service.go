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
	"petcare/internal/metrics"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type RoomInput struct {
	Name            string   `json:"name"`
	Capacity        int      `json:"capacity"`
	DailyRate       float64  `json:"dailyRate"`
	AcceptedSpecies []string `json:"acceptedSpecies"`
	AcceptedSizes   []string `json:"acceptedSizes"`
}

type BoardingInput struct {
	RoomID        string  `json:"roomId"`
	PetID         string  `json:"petId"`
	PetSpecies    string  `json:"petSpecies"`
	PetSize       string  `json:"petSize"`
	CheckInDate   string  `json:"checkInDate"`
	CheckOutDate  string  `json:"checkOutDate"`
	Discount      float64 `json:"discount"`
	ExtraServices float64 `json:"extraServices"`
	Notes         string  `json:"notes"`
}

type BoardingService struct {
	DB        *sqlx.DB
	Boardings *repos.BoardingRepo
	Now       func() time.Time
}

func NewBoardingService(db *sqlx.DB) *BoardingService {
	return &BoardingService{DB: db, Boardings: repos.NewBoardingRepo(db), Now: time.Now}
}

func normalizeList(in []string) string {
	vals := lo.FilterMap(in, func(s string, _ int) (string, bool) {
		s = strings.ToUpper(strings.TrimSpace(s))
		return s, s != ""
	})
	return strings.Join(lo.Uniq(vals), ",")
}

// accepts reports whether v is allowed by a comma separated list; an empty list allows anything.
func accepts(list, v string) bool {
	if list == "" || v == "" {
		return true
	}
	return lo.Contains(strings.Split(list, ","), strings.ToUpper(v))
}

func (s *BoardingService) CreateRoom(ctx context.Context, businessID string, in RoomInput) (*domain.BoardingRoom, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, invalid("room name is required")
	}
	if in.Capacity == 0 {
		in.Capacity = 1
	}
	if in.Capacity < 1 {
		return nil, invalid("room capacity must be at least 1")
	}
	if !validate.Money(in.DailyRate) {
		return nil, invalid("daily rate must be non-negative")
	}
	rm := domain.BoardingRoom{
		ID:              uuid.NewString(),
		BusinessID:      businessID,
		Name:            name,
		Capacity:        in.Capacity,
		DailyRate:       in.DailyRate,
		AcceptedSpecies: normalizeList(in.AcceptedSpecies),
		AcceptedSizes:   normalizeList(in.AcceptedSizes),
		IsActive:        true,
		CreatedAt:       s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Boardings.CreateRoom(ctx, rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (s *BoardingService) ListRooms(ctx context.Context, businessID string) ([]domain.BoardingRoom, error) {
	return s.Boardings.Rooms(ctx, businessID)
}

// stayRange parses the dates and returns the exclusive end of the occupied
// interval. A same-day stay occupies that one day.
func stayRange(checkIn, checkOut string) (time.Time, time.Time, string, error) {
	in, ok := validate.Date(checkIn)
	if !ok {
		return time.Time{}, time.Time{}, "", invalid("invalid check-in date %q", checkIn)
	}
	out, ok := validate.Date(checkOut)
	if !ok {
		return time.Time{}, time.Time{}, "", invalid("invalid check-out date %q", checkOut)
	}
	if out.Before(in) {
		return time.Time{}, time.Time{}, "", invalid("check-out %s is before check-in %s", checkOut, checkIn)
	}
	end := out
	if !end.After(in) {
		end = in.AddDate(0, 0, 1)
	}
	return in, out, end.Format(validate.DateLayout), nil
}

// RoomAvailability counts blocking stays overlapping [start, end); check-out day is free.
func (s *BoardingService) RoomAvailability(ctx context.Context, businessID, roomID, start, end string) (domain.RoomAvailability, error) {
	in, _, overlapEnd, err := stayRange(start, end)
	if err != nil {
		return domain.RoomAvailability{}, err
	}
	rm, err := s.Boardings.Room(ctx, businessID, roomID)
	if err != nil {
		return domain.RoomAvailability{}, notFound(err, "room", roomID)
	}
	n, err := s.Boardings.CountOverlaps(ctx, rm.ID, in.Format(validate.DateLayout), overlapEnd)
	if err != nil {
		return domain.RoomAvailability{}, err
	}
	return domain.RoomAvailability{
		RoomID:    rm.ID,
		Start:     start,
		End:       end,
		Capacity:  rm.Capacity,
		Conflicts: n,
		Available: rm.IsActive && n < rm.Capacity,
	}, nil
}

// Create reserves a room. Availability is re-checked inside the transaction
// that inserts the stay.
func (s *BoardingService) Create(ctx context.Context, businessID string, in BoardingInput) (*domain.Boarding, error) {
	checkIn, checkOut, overlapEnd, err := stayRange(in.CheckInDate, in.CheckOutDate)
	if err != nil {
		return nil, err
	}
	petID, ok := validate.ID(in.PetID)
	if !ok {
		return nil, invalid("pet id is required")
	}
	if !validate.Money(in.Discount) || !validate.Money(in.ExtraServices) {
		return nil, invalid("discount and extra services must be non-negative")
	}
	startDay := checkIn.Format(validate.DateLayout)

	var b domain.Boarding
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		boardings := s.Boardings.WithTx(tx)
		rm, err := boardings.Room(ctx, businessID, in.RoomID)
		if err != nil {
			return notFound(err, "room", in.RoomID)
		}
		if !rm.IsActive {
			return invalid("room %s is not active", rm.Name)
		}
		if !accepts(rm.AcceptedSpecies, in.PetSpecies) {
			return invalid("room %s does not accept species %s", rm.Name, in.PetSpecies)
		}
		if !accepts(rm.AcceptedSizes, in.PetSize) {
			return invalid("room %s does not accept size %s", rm.Name, in.PetSize)
		}

		n, err := boardings.CountOverlaps(ctx, rm.ID, startDay, overlapEnd)
		if err != nil {
			return err
		}
		if n >= rm.Capacity {
			return fmt.Errorf("%w: room %s is fully booked between %s and %s",
				ErrConflict, rm.Name, in.CheckInDate, in.CheckOutDate)
		}

		totals, err := PriceStay(checkIn, checkOut, rm.DailyRate, in.Discount, in.ExtraServices)
		if err != nil {
			return err
		}
		b = domain.Boarding{
			ID:            uuid.NewString(),
			BusinessID:    businessID,
			RoomID:        rm.ID,
			PetID:         petID,
			PetSpecies:    strings.ToUpper(strings.TrimSpace(in.PetSpecies)),
			PetSize:       strings.ToUpper(strings.TrimSpace(in.PetSize)),
			CheckInDate:   startDay,
			CheckOutDate:  checkOut.Format(validate.DateLayout),
			OccupiedUntil: overlapEnd,
			TotalDays:     totals.TotalDays,
			DailyRate:     rm.DailyRate,
			Subtotal:      totals.Subtotal,
			Discount:      in.Discount,
			ExtraServices: in.ExtraServices,
			TotalAmount:   totals.Total,
			Status:        domain.BoardingReserved,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedAt:     s.Now().UTC().Format(time.RFC3339),
		}
		return boardings.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	metrics.BoardingReservations.Inc()
	return &b, nil
}

func (s *BoardingService) Get(ctx context.Context, businessID, id string) (*domain.Boarding, error) {
	b, err := s.Boardings.Get(ctx, businessID, id)
	if err != nil {
		return nil, notFound(err, "boarding", id)
	}
	return b, nil
}

// CheckIn admits the pet if the room is not already physically full.
func (s *BoardingService) CheckIn(ctx context.Context, businessID, id string) (*domain.Boarding, error) {
	return s.transition(ctx, businessID, id, domain.BoardingCheckedIn, func(tx *sqlx.Tx, b *domain.Boarding) error {
		boardings := s.Boardings.WithTx(tx)
		rm, err := boardings.Room(ctx, businessID, b.RoomID)
		if err != nil {
			return notFound(err, "room", b.RoomID)
		}
		n, err := boardings.CountCheckedIn(ctx, rm.ID)
		if err != nil {
			return err
		}
		if n >= rm.Capacity {
			return fmt.Errorf("%w: room %s is occupied (%d/%d)", ErrConflict, rm.Name, n, rm.Capacity)
		}
		return nil
	})
}

func (s *BoardingService) CheckOut(ctx context.Context, businessID, id string) (*domain.Boarding, error) {
	return s.transition(ctx, businessID, id, domain.BoardingCheckedOut, nil)
}

func (s *BoardingService) Cancel(ctx context.Context, businessID, id string) (*domain.Boarding, error) {
	return s.transition(ctx, businessID, id, domain.BoardingCancelled, nil)
}

func (s *BoardingService) transition(ctx context.Context, businessID, id, to string, guard func(*sqlx.Tx, *domain.Boarding) error) (*domain.Boarding, error) {
	var out *domain.Boarding
	err := inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		boardings := s.Boardings.WithTx(tx)
		b, err := boardings.Get(ctx, businessID, id)
		if err != nil {
			return notFound(err, "boarding", id)
		}
		if !domain.CanTransitionBoarding(b.Status, to) {
			return invalid("boarding %s cannot move from %s to %s", id, b.Status, to)
		}
		if guard != nil {
			if err := guard(tx, b); err != nil {
				return err
			}
		}
		now := s.Now().UTC().Format(time.RFC3339)
		var checkIn, checkOut *string
		switch to {
		case domain.BoardingCheckedIn:
			checkIn = &now
		case domain.BoardingCheckedOut:
			checkOut = &now
		}
		ok, err := boardings.Transition(ctx, id, b.Status, to, checkIn, checkOut)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: boarding %s changed status concurrently", ErrConflict, id)
		}
		out, err = boardings.Get(ctx, businessID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
