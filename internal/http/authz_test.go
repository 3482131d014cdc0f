package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/services"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/marketplace/sellers/s-demo/listings", services.ListingInput{
		Title: "Cat Tree", SKU: "CT-1", Price: 199.9, Stock: 4,
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	l := decode[domain.Listing](t, body)
	require.Equal(t, domain.ListingDraft, l.Status)

	resp, _ = call(t, e.app, "POST", "/marketplace/listings/"+l.ID+"/submit", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	approve := "/admin/marketplace/listings/" + l.ID + "/approve"

	resp, _ = call(t, e.app, "POST", approve, nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	entries := captureLogs(t, func() {
		resp, _ = call(t, e.app, "POST", approve, nil, owner)
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	denied := findLog(entries, "access.denied.admin")
	require.NotNil(t, denied)
	require.Equal(t, "warn", denied.Level)

	admin := login(t, e.app, "admin@petcare.test")
	entries = captureLogs(t, func() {
		resp, body = call(t, e.app, "POST", approve, nil, admin)
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, domain.ListingActive, decode[domain.Listing](t, body).Status)
	audit := findLog(entries, "admin.listing.approve")
	require.NotNil(t, audit)
	require.Equal(t, "u-admin", audit.UserID)
	require.Equal(t, l.ID, audit.Fields["listing"])
}

func TestTenantsCannotReachEachOther(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/boarding/reservations", services.BoardingInput{
		RoomID: "r-suite", PetID: "pet-1", CheckInDate: "2025-01-10", CheckOutDate: "2025-01-12",
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	stay := decode[domain.Boarding](t, body)

	resp, _ = call(t, e.app, "POST", "/auth/register", services.RegisterInput{
		BusinessName: "Rival Vet", Kind: "CLINIC", OwnerName: "Rui", Email: "rui@rival.test", Password: "Str0ng!pass",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rival := cookie(resp, "sid")

	for _, path := range []string{
		"/boarding/reservations/" + stay.ID,
		"/marketplace/sellers/s-demo/payouts",
		"/marketplace/sellers/s-demo/orders",
		"/products/pr-shampoo/movements",
	} {
		resp, _ = call(t, e.app, "GET", path, nil, rival)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, _ = call(t, e.app, "POST", "/boarding/reservations/"+stay.ID+"/cancel", nil, rival)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, e.app, "GET", "/products", nil, rival)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(body), "pr-shampoo")

	// the owner still sees the stay untouched
	resp, body = call(t, e.app, "GET", "/boarding/reservations/"+stay.ID, nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, domain.BoardingReserved, decode[domain.Boarding](t, body).Status)
}

func TestBusinessRoutesNeedASession(t *testing.T) {
	e := newEnv(t)
	for _, r := range []struct{ method, path string }{
		{"GET", "/boarding/rooms"},
		{"POST", "/daycare/enrollments"},
		{"GET", "/products"},
		{"POST", "/sales"},
		{"GET", "/analytics/dashboard"},
		{"GET", "/reports/cash-register/2025-01-01"},
	} {
		resp, _ := call(t, e.app, r.method, r.path, nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.path)
	}
}
