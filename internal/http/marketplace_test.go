package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/repos"
)

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"items":           items,
		"buyerName":       "Bruno",
		"buyerEmail":      "bruno@example.com",
		"shippingAddress": "Rua A, 10",
		"shippingCost":    10,
		"discount":        5,
		"paymentMethod":   "pix",
		// ignored: totals are always computed server-side
		"subtotal":    1,
		"totalAmount": 0.01,
		"commission":  0,
	}
}

func TestOrderTotalsComputedServerSide(t *testing.T) {
	e := newEnv(t)

	var resp *http.Response
	var body []byte
	entries := captureLogs(t, func() {
		resp, body = call(t, e.app, "POST", "/marketplace/orders", orderBody(
			map[string]any{"listingId": "l-kibble", "quantity": 2},
			map[string]any{"listingId": "l-toy", "quantity": 1},
		), "")
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	o := decode[domain.MarketplaceOrder](t, body)
	require.Equal(t, 112.5, o.Subtotal)
	require.Equal(t, 117.5, o.TotalAmount)
	require.Equal(t, 11.75, o.Commission)
	require.Equal(t, 105.75, o.SellerPayout)
	require.Equal(t, domain.OrderPending, o.Status)

	placed := findLog(entries, "order.place")
	require.NotNil(t, placed)
	require.Equal(t, "audit", placed.Level)
	require.Equal(t, o.OrderNumber, placed.Fields["order"])

	resp, body = call(t, e.app, "GET", "/marketplace/orders/"+o.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[domain.MarketplaceOrder](t, body).Items, 2)

	resp, body = call(t, e.app, "GET", "/marketplace/listings/l-toy/availability", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	a := decode[domain.Availability](t, body)
	require.Equal(t, "LOW_STOCK", a.Status)
	require.Equal(t, 2, a.Qty)
}

func TestOrderRejections(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name   string
		body   any
		status int
	}{
		{"empty cart", orderBody(), http.StatusBadRequest},
		{"zero quantity", orderBody(map[string]any{"listingId": "l-toy", "quantity": 0}), http.StatusBadRequest},
		{"unknown listing", orderBody(map[string]any{"listingId": "l-ghost", "quantity": 1}), http.StatusNotFound},
		{"more than in stock", orderBody(map[string]any{"listingId": "l-toy", "quantity": 4}), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := call(t, e.app, "POST", "/marketplace/orders", tc.body, "")
			require.Equal(t, tc.status, resp.StatusCode, string(body))
			msg := decode[map[string]any](t, body)
			require.Equal(t, float64(tc.status), msg["statusCode"])
			require.NotEmpty(t, msg["message"])
		})
	}

	// nothing was sold along the way
	l, err := repos.NewListingRepo(e.db).Get(context.Background(), "l-toy")
	require.NoError(t, err)
	require.Equal(t, 3, l.Stock)
}

func TestOrderFulfilmentAndPayouts(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/marketplace/orders", map[string]any{
		"items":         []map[string]any{{"listingId": "l-kibble", "quantity": 3}},
		"buyerName":     "Bruno",
		"buyerEmail":    "bruno@example.com",
		"paymentMethod": "CARD",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	o := decode[domain.MarketplaceOrder](t, body)

	path := "/marketplace/orders/" + o.ID + "/status"
	resp, _ = call(t, e.app, "PUT", path, map[string]string{"status": "DELIVERED"}, owner)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = call(t, e.app, "PUT", path, map[string]string{"status": "SHIPPED", "trackingCode": "BR123"}, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, "BR123", *decode[domain.MarketplaceOrder](t, body).TrackingCode)

	admin := login(t, e.app, "admin@petcare.test")
	resp, _ = call(t, e.app, "PUT", "/admin/marketplace/orders/"+o.ID+"/status", map[string]string{"status": "DELIVERED"}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, e.app, "GET", "/marketplace/sellers/s-demo/payouts", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[repos.PayoutSummary](t, body)
	require.Equal(t, 1, p.OrdersCount)
	require.Equal(t, 150.0, p.Gross)
	require.Equal(t, 15.0, p.Commission)
	require.Equal(t, 135.0, p.SellerPayout)

	_, body = call(t, e.app, "GET", "/marketplace/sellers", nil, owner)
	require.Len(t, decode[[]domain.Seller](t, body), 1)

	resp, body = call(t, e.app, "GET", "/marketplace/sellers/s-demo/orders", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]domain.MarketplaceOrder](t, body), 1)
}

func TestListingReviewsModeration(t *testing.T) {
	e := newEnv(t)

	resp, body := call(t, e.app, "POST", "/marketplace/listings/l-kibble/reviews", map[string]any{"authorName": "Lia", "rating": 6}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	var ids []string
	for _, r := range []int{5, 2} {
		resp, body = call(t, e.app, "POST", "/marketplace/listings/l-kibble/reviews", map[string]any{"authorName": "Lia", "rating": r}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		ids = append(ids, decode[domain.Review](t, body).ID)
	}

	resp, body = call(t, e.app, "GET", "/marketplace/listings/l-kibble", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3.5, decode[domain.Listing](t, body).AverageRating)

	admin := login(t, e.app, "admin@petcare.test")
	resp, _ = call(t, e.app, "PUT", "/admin/marketplace/reviews/"+ids[1]+"/publish", map[string]bool{"published": false}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = call(t, e.app, "GET", "/marketplace/listings/l-kibble", nil, "")
	l := decode[domain.Listing](t, body)
	require.Equal(t, 5.0, l.AverageRating)
	require.Equal(t, 1, l.TotalReviews)
}

func TestListingSearch(t *testing.T) {
	e := newEnv(t)

	resp, body := call(t, e.app, "GET", "/marketplace/listings?q=kibble", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[[]domain.Listing](t, body)
	require.Len(t, got, 1)
	require.Equal(t, "l-kibble", got[0].ID)

	_, body = call(t, e.app, "GET", "/marketplace/listings", nil, "")
	require.Len(t, decode[[]domain.Listing](t, body), 2)
}
