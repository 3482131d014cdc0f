package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/services"
)

func TestSitterBookingSplit(t *testing.T) {
	fee, payout := services.SplitSitterBooking(333.33)
	require.Equal(t, 33.33, fee)
	require.Equal(t, 300.0, payout)
}

func TestPetSitterBookingReviewAndPayout(t *testing.T) {
	ctx := context.Background()
	svc := services.NewPetSitterService(memdb(t))

	ps, err := svc.Register(ctx, services.SitterInput{Name: "Carla", Email: "Carla@Example.com", DailyRate: 90})
	require.NoError(t, err)
	_, err = svc.Register(ctx, services.SitterInput{Name: "Carla 2", Email: "carla@example.com", DailyRate: 90})
	require.ErrorIs(t, err, services.ErrConflict)

	var ids []string
	for _, r := range []struct{ start, end string }{{"2025-07-01", "2025-07-04"}, {"2025-07-10", "2025-07-11"}} {
		b, err := svc.CreateBooking(ctx, ps.ID, services.BookingInput{
			ClientName: "Diego", ClientEmail: "diego@example.com", PetID: "pet-3", StartDate: r.start, EndDate: r.end,
		})
		require.NoError(t, err)
		require.Equal(t, domain.Round2(b.PlatformFee+b.SitterPayout), b.TotalAmount)
		ids = append(ids, b.ID)
	}

	_, err = svc.Review(ctx, ids[0], services.SitterReviewInput{Rating: 5})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreatePayout(ctx, ps.ID)
	require.ErrorIs(t, err, services.ErrValidation)

	for _, id := range ids {
		for _, st := range []string{"CONFIRMED", "COMPLETED"} {
			_, err := svc.UpdateBookingStatus(ctx, id, st)
			require.NoError(t, err)
		}
	}
	_, err = svc.UpdateBookingStatus(ctx, ids[0], "CANCELLED")
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Review(ctx, ids[0], services.SitterReviewInput{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Review(ctx, ids[1], services.SitterReviewInput{Rating: 4})
	require.NoError(t, err)
	_, err = svc.Review(ctx, ids[1], services.SitterReviewInput{Rating: 1})
	require.ErrorIs(t, err, services.ErrConflict)

	got, err := svc.Get(ctx, ps.ID)
	require.NoError(t, err)
	require.Equal(t, 4.5, got.AverageRating)
	require.Equal(t, 2, got.TotalReviews)

	// 3 days + 1 day at 90 = 360, sitter keeps 90%
	p, err := svc.CreatePayout(ctx, ps.ID)
	require.NoError(t, err)
	require.Equal(t, 2, p.BookingsCount)
	require.Equal(t, 324.0, p.Amount)

	_, err = svc.CreatePayout(ctx, ps.ID)
	require.ErrorIs(t, err, services.ErrValidation)
}
