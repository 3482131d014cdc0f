package services_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var demo = services.Scope{BusinessID: "b-demo"}

func buyer(items ...services.OrderLine) services.CreateOrderInput {
	return services.CreateOrderInput{
		Items:           items,
		BuyerName:       "Bruno",
		BuyerEmail:      "bruno@example.com",
		ShippingAddress: "Rua A, 10",
		PaymentMethod:   "pix",
	}
}

func TestPriceOrderIdentity(t *testing.T) {
	cases := []struct {
		lines              []services.PricedLine
		shipping, discount float64
		rate               float64
	}{
		{[]services.PricedLine{{Quantity: 2, UnitPrice: 50}}, 10, 5, 10},
		{[]services.PricedLine{{Quantity: 3, UnitPrice: 19.99}, {Quantity: 1, UnitPrice: 0.01}}, 0, 0, 12.5},
		{[]services.PricedLine{{Quantity: 1, UnitPrice: 33.33}}, 7.77, 1.11, 0},
		{[]services.PricedLine{{Quantity: 7, UnitPrice: 14.29}}, 0, 100.03, 100},
	}
	for _, c := range cases {
		tot, err := services.PriceOrder(c.lines, c.shipping, c.discount, c.rate)
		require.NoError(t, err)
		require.Equal(t, domain.Round2(tot.Subtotal+c.shipping-c.discount), tot.Total)
		require.Equal(t, domain.Round2(tot.Total*c.rate/100), tot.Commission)
		require.Equal(t, domain.Round2(tot.Total-tot.Commission), tot.SellerPayout)
	}

	_, err := services.PriceOrder([]services.PricedLine{{Quantity: 1, UnitPrice: 10}}, 0, 11, 10)
	require.ErrorIs(t, err, services.ErrValidation)
	_, err = services.PriceOrder([]services.PricedLine{{Quantity: 1, UnitPrice: 10}}, 0, 0, 101)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestCreateOrderDecrementsStockAndSnapshotsPrices(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	orders := services.NewOrderService(db)

	in := buyer(
		services.OrderLine{ListingID: "l-kibble", Quantity: 1},
		services.OrderLine{ListingID: "l-toy", Quantity: 1},
		services.OrderLine{ListingID: "l-kibble", Quantity: 1},
	)
	in.ShippingCost, in.Discount = 10, 5

	o, err := orders.Create(ctx, in)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^MP[0-9]{13}[0-9A-Z]{4}$`), o.OrderNumber)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Equal(t, "PIX", o.PaymentMethod)
	require.Len(t, o.Items, 2)
	require.Equal(t, 112.5, o.Subtotal)
	require.Equal(t, 117.5, o.TotalAmount)
	require.Equal(t, 11.75, o.Commission)
	require.Equal(t, 105.75, o.SellerPayout)

	kibble, err := orders.Listings.Get(ctx, "l-kibble")
	require.NoError(t, err)
	require.Equal(t, 8, kibble.Stock)
	require.Equal(t, 2, kibble.SalesCount)

	// later price changes never reach existing orders
	listings := services.NewListingService(services.NewSellerService(repos.NewSellerRepo(db)), repos.NewListingRepo(db), repos.NewInventoryRepo(db))
	_, err = listings.Update(ctx, demo, "l-kibble", services.ListingInput{Title: kibble.Title, SKU: kibble.SKU, Price: 99, Stock: kibble.Stock})
	require.NoError(t, err)

	again, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	for _, it := range again.Items {
		if it.ListingID == "l-kibble" {
			require.Equal(t, 50.0, it.UnitPrice)
			require.Equal(t, 100.0, it.TotalPrice)
		}
	}
	require.Equal(t, 117.5, again.TotalAmount)
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	orders := services.NewOrderService(db)

	_, err := orders.Create(ctx, buyer())
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = orders.Create(ctx, buyer(services.OrderLine{ListingID: "l-toy", Quantity: 0}))
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = orders.Create(ctx, buyer(services.OrderLine{ListingID: "nope", Quantity: 1}))
	require.ErrorIs(t, err, services.ErrNotFound)

	_, err = orders.Create(ctx, buyer(services.OrderLine{ListingID: "l-toy", Quantity: 4}))
	require.ErrorIs(t, err, services.ErrInsufficientStock)
	require.Contains(t, err.Error(), "l-toy")

	q, err := orders.Inv.Qty(ctx, "l-toy")
	require.NoError(t, err)
	require.Equal(t, 3, q)
}

func TestCreateOrderRejectsMultiSellerCart(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	sellers := services.NewSellerService(repos.NewSellerRepo(db))
	listings := services.NewListingService(sellers, repos.NewListingRepo(db), repos.NewInventoryRepo(db))

	other, err := sellers.Create(ctx, "b-demo", services.SellerInput{Name: "Second Store", CommissionRate: 5})
	require.NoError(t, err)
	l, err := listings.Create(ctx, demo, other.ID, services.ListingInput{Title: "Leash", Price: 20, Stock: 5})
	require.NoError(t, err)
	require.Equal(t, domain.ListingDraft, l.Status)

	// drafts cannot be ordered
	_, err = services.NewOrderService(db).Create(ctx, buyer(services.OrderLine{ListingID: l.ID, Quantity: 1}))
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = listings.SubmitForReview(ctx, demo, l.ID)
	require.NoError(t, err)
	_, err = listings.Approve(ctx, l.ID)
	require.NoError(t, err)

	_, err = services.NewOrderService(db).Create(ctx, buyer(
		services.OrderLine{ListingID: l.ID, Quantity: 1},
		services.OrderLine{ListingID: "l-toy", Quantity: 1},
	))
	require.ErrorIs(t, err, services.ErrValidation)
	require.Contains(t, err.Error(), "multiple sellers")
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	orders := services.NewOrderService(db)

	const buyers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.Create(ctx, buyer(services.OrderLine{ListingID: "l-toy", Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			fail++
		}()
	}
	wg.Wait()

	require.Equal(t, 3, ok)
	require.Equal(t, buyers-3, fail)
	q, err := orders.Inv.Qty(ctx, "l-toy")
	require.NoError(t, err)
	require.Equal(t, 0, q)
}

func TestOrderStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	orders := services.NewOrderService(db)

	o, err := orders.Create(ctx, buyer(services.OrderLine{ListingID: "l-kibble", Quantity: 3}))
	require.NoError(t, err)

	shipped, err := orders.UpdateStatus(ctx, demo, o.ID, services.StatusInput{Status: "SHIPPED", TrackingCode: "BR123"})
	require.NoError(t, err)
	require.Equal(t, domain.OrderShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedAt)
	require.Equal(t, "BR123", *shipped.TrackingCode)

	delivered, err := orders.UpdateStatus(ctx, demo, o.ID, services.StatusInput{Status: "DELIVERED"})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	require.Equal(t, o.TotalAmount, delivered.TotalAmount)

	_, err = orders.UpdateStatus(ctx, demo, o.ID, services.StatusInput{Status: "CANCELLED"})
	require.ErrorIs(t, err, services.ErrValidation)

	// another tenant cannot see the order
	_, err = orders.UpdateStatus(ctx, services.Scope{BusinessID: "b-platform"}, o.ID, services.StatusInput{Status: "CANCELLED"})
	require.ErrorIs(t, err, services.ErrNotFound)

	summary, err := services.NewSellerService(repos.NewSellerRepo(db)).PayoutSummary(ctx, demo, "s-demo")
	require.NoError(t, err)
	require.Equal(t, 1, summary.OrdersCount)
	require.Equal(t, 150.0, summary.Gross)
	require.Equal(t, 15.0, summary.Commission)
	require.Equal(t, 135.0, summary.SellerPayout)
}

func TestCancelPendingOrderRestocks(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	orders := services.NewOrderService(db)

	o, err := orders.Create(ctx, buyer(services.OrderLine{ListingID: "l-toy", Quantity: 2}))
	require.NoError(t, err)

	c, err := orders.UpdateStatus(ctx, services.Scope{Admin: true}, o.ID, services.StatusInput{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, c.Status)
	require.NotNil(t, c.CancelledAt)

	l, err := orders.Listings.Get(ctx, "l-toy")
	require.NoError(t, err)
	require.Equal(t, 3, l.Stock)
	require.Equal(t, 0, l.SalesCount)
}

func TestListingReviewAggregation(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	reviews := services.NewReviewService(db)

	var last *domain.Review
	for _, r := range []int{5, 3, 4} {
		rv, err := reviews.CreateListingReview(ctx, "l-kibble", services.ReviewInput{AuthorName: "Ana", Rating: r})
		require.NoError(t, err)
		last = rv
	}
	l, err := reviews.Listings.Get(ctx, "l-kibble")
	require.NoError(t, err)
	require.Equal(t, 4.0, l.AverageRating)
	require.Equal(t, 3, l.TotalReviews)

	// unpublishing the 4-star review leaves [5,3]
	_, err = reviews.SetPublished(ctx, last.ID, false)
	require.NoError(t, err)
	s, err := reviews.Sellers.Get(ctx, "s-demo")
	require.NoError(t, err)
	require.Equal(t, 4.0, s.AverageRating)
	require.Equal(t, 2, s.TotalReviews)

	_, err = reviews.CreateListingReview(ctx, "l-kibble", services.ReviewInput{AuthorName: "Ana", Rating: 6})
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestListingAvailabilityAndSearch(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	listings := services.NewListingService(services.NewSellerService(repos.NewSellerRepo(db)), repos.NewListingRepo(db), repos.NewInventoryRepo(db))

	a, err := listings.Availability(ctx, "l-kibble")
	require.NoError(t, err)
	require.Equal(t, "IN_STOCK", a.Status)
	a, err = listings.Availability(ctx, "l-toy")
	require.NoError(t, err)
	require.Equal(t, "LOW_STOCK", a.Status)
	_, err = listings.Availability(ctx, "missing")
	require.ErrorIs(t, err, services.ErrNotFound)

	found, err := listings.Search(ctx, "kib", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "l-kibble", found[0].ID)

	_, err = listings.Search(ctx, "<script>", 10)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestListingEditRefusedWhenStockMovedUnderneath(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	inv := repos.NewInventoryRepo(db)
	listings := services.NewListingService(services.NewSellerService(repos.NewSellerRepo(db)), repos.NewListingRepo(db), inv)

	// an order lands between the read and the write of the edit
	listings.Now = func() time.Time {
		require.NoError(t, inv.Decrement(ctx, "l-kibble", 3))
		return time.Now()
	}
	_, err := listings.Update(ctx, demo, "l-kibble", services.ListingInput{Title: "Kibble 2kg", Price: 55, Stock: 10})
	require.ErrorIs(t, err, services.ErrConflict)

	l, err := listings.Get(ctx, "l-kibble")
	require.NoError(t, err)
	require.Equal(t, 7, l.Stock)
	require.Equal(t, 3, l.SalesCount)
	require.Equal(t, 50.0, l.Price)

	// a fresh read sees the new stock and the edit goes through
	listings.Now = time.Now
	updated, err := listings.Update(ctx, demo, "l-kibble", services.ListingInput{Title: "Kibble 2kg", Price: 55, Stock: l.Stock})
	require.NoError(t, err)
	require.Equal(t, 7, updated.Stock)
	require.Equal(t, 55.0, updated.Price)
}
