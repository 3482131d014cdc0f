package domain

import "testing"

func TestOrderTransitions(t *testing.T) {
	if !CanTransitionOrder(OrderPending, OrderShipped) {
		t.Fatal("expected PENDING -> SHIPPED to be allowed")
	}
	if !CanTransitionOrder(OrderShipped, OrderDelivered) {
		t.Fatal("expected SHIPPED -> DELIVERED to be allowed")
	}
	if !CanTransitionOrder(OrderShipped, OrderCancelled) {
		t.Fatal("expected SHIPPED -> CANCELLED to be allowed")
	}
	if CanTransitionOrder(OrderDelivered, OrderCancelled) {
		t.Fatal("DELIVERED is terminal")
	}
	if CanTransitionOrder(OrderPending, OrderDelivered) {
		t.Fatal("unexpected PENDING -> DELIVERED")
	}
	if CanTransitionOrder(OrderCancelled, OrderPending) {
		t.Fatal("CANCELLED is terminal")
	}
}

func TestBoardingTransitions(t *testing.T) {
	if !CanTransitionBoarding(BoardingReserved, BoardingCheckedIn) {
		t.Fatal("expected RESERVED -> CHECKED_IN")
	}
	if !CanTransitionBoarding(BoardingCheckedIn, BoardingCancelled) {
		t.Fatal("expected CHECKED_IN -> CANCELLED")
	}
	if CanTransitionBoarding(BoardingCheckedOut, BoardingCancelled) {
		t.Fatal("CHECKED_OUT is terminal")
	}
	if CanTransitionBoarding(BoardingReserved, BoardingCheckedOut) {
		t.Fatal("cannot check out without checking in")
	}
}

func TestListingTransitions(t *testing.T) {
	if !CanTransitionListing(ListingDraft, ListingPendingReview) {
		t.Fatal("expected DRAFT -> PENDING_REVIEW")
	}
	if CanTransitionListing(ListingActive, ListingDraft) {
		t.Fatal("listings never return to DRAFT")
	}
	if !CanTransitionListing(ListingRejected, ListingActive) {
		t.Fatal("admin approve after reject should be allowed")
	}
}

func TestMovementDirection(t *testing.T) {
	for _, ty := range []string{MovePurchase, MoveReturn, MoveAdjustment} {
		if !IsIncreasingMovement(ty) {
			t.Fatalf("%s should add stock", ty)
		}
	}
	for _, ty := range []string{MoveSale, MoveServiceUse, MoveLoss, MoveExpired} {
		if IsIncreasingMovement(ty) {
			t.Fatalf("%s should subtract stock", ty)
		}
	}
	if IsMovementType("GIFT") {
		t.Fatal("unknown movement type accepted")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.1 + 0.2); got != 0.3 {
		t.Fatalf("want 0.3, got %v", got)
	}
	if got := Round2(19.999); got != 20 {
		t.Fatalf("want 20, got %v", got)
	}
	if got := Round2(58); got != 58 {
		t.Fatalf("want 58, got %v", got)
	}
}
