package domain

// Listing statuses.
const (
	ListingDraft         = "DRAFT"
	ListingPendingReview = "PENDING_REVIEW"
	ListingActive        = "ACTIVE"
	ListingRejected      = "REJECTED"
)

// Marketplace order statuses.
const (
	OrderPending   = "PENDING"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// Boarding statuses.
const (
	BoardingPending    = "PENDING"
	BoardingReserved   = "RESERVED"
	BoardingCheckedIn  = "CHECKED_IN"
	BoardingCheckedOut = "CHECKED_OUT"
	BoardingCancelled  = "CANCELLED"
)

// Pet sitter booking statuses.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

const AttendancePresent = "PRESENT"

// Stock movement types.
const (
	MovePurchase   = "PURCHASE"
	MoveReturn     = "RETURN"
	MoveAdjustment = "ADJUSTMENT"
	MoveSale       = "SALE"
	MoveServiceUse = "SERVICE_USE"
	MoveLoss       = "LOSS"
	MoveExpired    = "EXPIRED"
)

// Payment methods accepted at the point of sale and on marketplace orders.
const (
	PayCash     = "CASH"
	PayCard     = "CARD"
	PayPix      = "PIX"
	PayTransfer = "TRANSFER"
)

type transitions map[string]map[string]struct{}

var (
	listingTransitions = transitions{
		ListingDraft:         {ListingPendingReview: {}},
		ListingPendingReview: {ListingActive: {}, ListingRejected: {}},
		ListingActive:        {ListingRejected: {}},
		ListingRejected:      {ListingActive: {}},
	}
	orderTransitions = transitions{
		OrderPending:   {OrderShipped: {}, OrderCancelled: {}},
		OrderShipped:   {OrderDelivered: {}, OrderCancelled: {}},
		OrderDelivered: {},
		OrderCancelled: {},
	}
	boardingTransitions = transitions{
		BoardingPending:    {BoardingReserved: {}, BoardingCheckedIn: {}, BoardingCancelled: {}},
		BoardingReserved:   {BoardingCheckedIn: {}, BoardingCancelled: {}},
		BoardingCheckedIn:  {BoardingCheckedOut: {}, BoardingCancelled: {}},
		BoardingCheckedOut: {},
		BoardingCancelled:  {},
	}
	bookingTransitions = transitions{
		BookingPending:   {BookingConfirmed: {}, BookingCancelled: {}},
		BookingConfirmed: {BookingCompleted: {}, BookingCancelled: {}},
		BookingCompleted: {},
		BookingCancelled: {},
	}
)

func (t transitions) can(from, to string) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

func CanTransitionListing(from, to string) bool  { return listingTransitions.can(from, to) }
func CanTransitionOrder(from, to string) bool    { return orderTransitions.can(from, to) }
func CanTransitionBoarding(from, to string) bool { return boardingTransitions.can(from, to) }
func CanTransitionBooking(from, to string) bool  { return bookingTransitions.can(from, to) }

// IsIncreasingMovement reports whether a stock movement type adds to on-hand stock.
func IsIncreasingMovement(t string) bool {
	return t == MovePurchase || t == MoveReturn || t == MoveAdjustment
}

func IsMovementType(t string) bool {
	switch t {
	case MovePurchase, MoveReturn, MoveAdjustment, MoveSale, MoveServiceUse, MoveLoss, MoveExpired:
		return true
	}
	return false
}

func IsPaymentMethod(m string) bool {
	switch m {
	case PayCash, PayCard, PayPix, PayTransfer:
		return true
	}
	return false
}
