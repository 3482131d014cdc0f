package services

import (
	"math"
	"time"

	"github.com/samber/lo"

	"petcare/internal/domain"
)

// PricedLine is one cart line with the unit price taken from the listing.
type PricedLine struct {
	Quantity  int
	UnitPrice float64
}

type OrderTotals struct {
	Subtotal     float64
	Shipping     float64
	Discount     float64
	Total        float64
	Commission   float64
	SellerPayout float64
}

// PriceOrder computes totals and the seller/platform split.
// commission + sellerPayout always equals total.
func PriceOrder(lines []PricedLine, shipping, discount, commissionRate float64) (OrderTotals, error) {
	if shipping < 0 || discount < 0 {
		return OrderTotals{}, invalid("shipping and discount must be non-negative")
	}
	if commissionRate < 0 || commissionRate > 100 {
		return OrderTotals{}, invalid("commission rate %.2f outside 0..100", commissionRate)
	}
	subtotal := domain.Round2(lo.SumBy(lines, func(l PricedLine) float64 {
		return float64(l.Quantity) * l.UnitPrice
	}))
	if discount > subtotal+shipping {
		return OrderTotals{}, invalid("discount %.2f exceeds subtotal plus shipping %.2f", discount, subtotal+shipping)
	}
	total := domain.Round2(subtotal + shipping - discount)
	commission := domain.Round2(total * commissionRate / 100)
	return OrderTotals{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Discount:     discount,
		Total:        total,
		Commission:   commission,
		SellerPayout: domain.Round2(total - commission),
	}, nil
}

type StayTotals struct {
	TotalDays int
	Subtotal  float64
	Total     float64
}

// PriceStay charges whole days: any started 24h block counts, minimum one day.
func PriceStay(checkIn, checkOut time.Time, dailyRate, discount, extras float64) (StayTotals, error) {
	if checkOut.Before(checkIn) {
		return StayTotals{}, invalid("check-out %s is before check-in %s", checkOut.Format(time.DateOnly), checkIn.Format(time.DateOnly))
	}
	if dailyRate < 0 || discount < 0 || extras < 0 {
		return StayTotals{}, invalid("rates, discount and extras must be non-negative")
	}
	days := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	days = max(days, 1)
	subtotal := domain.Round2(float64(days) * dailyRate)
	if discount > subtotal+extras {
		return StayTotals{}, invalid("discount %.2f exceeds subtotal plus extras %.2f", discount, subtotal+extras)
	}
	return StayTotals{
		TotalDays: days,
		Subtotal:  subtotal,
		Total:     domain.Round2(subtotal - discount + extras),
	}, nil
}

// SitterFeeRate is the platform share of a pet-sitter booking.
const SitterFeeRate = 0.10

// SplitSitterBooking returns (platformFee, sitterPayout) for a booking total.
func SplitSitterBooking(total float64) (float64, float64) {
	fee := domain.Round2(total * SitterFeeRate)
	return fee, domain.Round2(total - fee)
}
