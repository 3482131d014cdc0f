package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/services"
)

func TestBoardingOverHTTP(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/boarding/reservations", services.BoardingInput{
		RoomID: "r-suite", PetID: "pet-1", PetSpecies: "DOG", CheckInDate: "2025-02-01", CheckOutDate: "2025-02-05", ExtraServices: 20,
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	b := decode[domain.Boarding](t, body)
	require.Equal(t, 4, b.TotalDays)
	require.Equal(t, 500.0, b.TotalAmount)

	resp, body = call(t, e.app, "POST", "/boarding/reservations", services.BoardingInput{
		RoomID: "r-suite", PetID: "pet-2", CheckInDate: "2025-02-04", CheckOutDate: "2025-02-06",
	}, owner)
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	resp, body = call(t, e.app, "GET", "/boarding/rooms/r-suite/availability?start=2025-02-05&end=2025-02-07", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.True(t, decode[domain.RoomAvailability](t, body).Available)

	for _, step := range []struct{ path, status string }{
		{"checkin", domain.BoardingCheckedIn},
		{"checkout", domain.BoardingCheckedOut},
	} {
		resp, body = call(t, e.app, "POST", "/boarding/reservations/"+b.ID+"/"+step.path, nil, owner)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.Equal(t, step.status, decode[domain.Boarding](t, body).Status)
	}

	resp, _ = call(t, e.app, "POST", "/boarding/reservations/"+b.ID+"/cancel", nil, owner)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDaycareOverHTTP(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/daycare/packages", services.PackageInput{Name: "Two days", DaysIncluded: 2, Price: 80}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	pkg := decode[domain.DaycarePackage](t, body)

	resp, body = call(t, e.app, "POST", "/daycare/enrollments", services.EnrollInput{PackageID: pkg.ID, PetID: "pet-7", StartDate: "2025-05-01"}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	en := decode[domain.DaycareEnrollment](t, body)

	checkIn := "/daycare/attendance/" + en.ID + "/checkin"
	for _, d := range []string{"2025-05-01", "2025-05-01", "2025-05-02"} {
		resp, body = call(t, e.app, "POST", checkIn, map[string]string{"date": d}, owner)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
	resp, body = call(t, e.app, "POST", checkIn, map[string]string{"date": "2025-05-03"}, owner)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = call(t, e.app, "POST", "/daycare/attendance/"+en.ID+"/checkout", map[string]string{"date": "2025-05-02"}, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NotNil(t, decode[domain.DaycareAttendance](t, body).CheckOutTime)

	resp, body = call(t, e.app, "GET", "/daycare/enrollments/"+en.ID, nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.DaycareEnrollment](t, body)
	require.Equal(t, 2, got.UsedCredits)
	require.Equal(t, 0, got.RemainingCredits)

	_, body = call(t, e.app, "GET", "/daycare/enrollments/"+en.ID+"/attendance", nil, owner)
	require.Len(t, decode[[]domain.DaycareAttendance](t, body), 2)
}

func TestRetailSalesAndCashRegister(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	resp, body := call(t, e.app, "POST", "/products/pr-shampoo/movements", services.MoveInput{Type: "PURCHASE", Quantity: 8}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.Equal(t, 20, decode[domain.StockMovement](t, body).NewStock)

	resp, body = call(t, e.app, "POST", "/sales", services.SaleInput{
		Items: []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 2}}, PaymentMethod: "CASH", Date: "2025-03-01",
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, e.app, "POST", "/sales", services.SaleInput{
		Items: []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 50}}, PaymentMethod: "CASH", Date: "2025-03-01",
	}, owner)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	_, body = call(t, e.app, "GET", "/sales?date=2025-03-01", nil, owner)
	require.Len(t, decode[[]domain.Sale](t, body), 1)

	resp, body = call(t, e.app, "GET", "/finance/cash-register/2025-03-01", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	live := decode[domain.CashRegister](t, body)
	require.False(t, live.IsClosed)
	require.Equal(t, 50.0, live.CashTotal)

	_, body = call(t, e.app, "GET", "/products/pr-shampoo/movements", nil, owner)
	require.Len(t, decode[[]domain.StockMovement](t, body), 2)

	resp, body = call(t, e.app, "GET", "/analytics/dashboard?date=2025-03-01", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 50.0, decode[domain.Dashboard](t, body).SalesTotal)

	resp, body = call(t, e.app, "POST", "/finance/cash-register/2025-03-01/close", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decode[domain.CashRegister](t, body).IsClosed)

	resp, _ = call(t, e.app, "POST", "/sales", services.SaleInput{
		Items: []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 1}}, PaymentMethod: "PIX", Date: "2025-03-01",
	}, owner)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCashRegisterReportCSRF(t *testing.T) {
	e := newEnv(t)
	owner := login(t, e.app, "owner@happypaws.test")

	req := httptest.NewRequest("GET", "/reports/cash-register/2025-04-02", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: owner})
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := cookie(resp, "csrf_")
	require.NotEmpty(t, tok)

	post := func(form url.Values) *http.Response {
		req := httptest.NewRequest("POST", "/reports/cash-register/2025-04-02/close", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "sid", Value: owner})
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
		resp, err := e.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	var resp2 *http.Response
	entries := captureLogs(t, func() { resp2 = post(url.Values{}) })
	require.Equal(t, http.StatusForbidden, resp2.StatusCode)
	require.NotNil(t, findLog(entries, "csrf.fail"))

	resp2 = post(url.Values{"csrf": {tok}})
	require.Equal(t, http.StatusFound, resp2.StatusCode)

	_, body := call(t, e.app, "GET", "/finance/cash-register/2025-04-02", nil, owner)
	require.True(t, decode[domain.CashRegister](t, body).IsClosed)
}

func TestPetSitterOverHTTP(t *testing.T) {
	e := newEnv(t)
	admin := login(t, e.app, "admin@petcare.test")

	resp, body := call(t, e.app, "POST", "/petsitters", services.SitterInput{Name: "Carla", Email: "carla@example.com", DailyRate: 100}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ps := decode[domain.PetSitter](t, body)

	resp, body = call(t, e.app, "POST", "/petsitters/"+ps.ID+"/bookings", services.BookingInput{
		ClientName: "Diego", ClientEmail: "diego@example.com", PetID: "pet-3", StartDate: "2025-07-01", EndDate: "2025-07-03",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	bk := decode[domain.PetSitterBooking](t, body)
	require.Equal(t, 200.0, bk.TotalAmount)
	require.Equal(t, 20.0, bk.PlatformFee)

	status := "/admin/petsitters/bookings/" + bk.ID + "/status"
	resp, _ = call(t, e.app, "PUT", status, map[string]string{"status": "CONFIRMED"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	for _, st := range []string{"CONFIRMED", "COMPLETED"} {
		resp, body = call(t, e.app, "PUT", status, map[string]string{"status": st}, admin)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body = call(t, e.app, "POST", "/petsitters/bookings/"+bk.ID+"/review", services.SitterReviewInput{Rating: 4}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, e.app, "POST", "/admin/petsitters/"+ps.ID+"/payouts", nil, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.Equal(t, 180.0, decode[domain.SitterPayout](t, body).Amount)

	_, body = call(t, e.app, "GET", "/petsitters/"+ps.ID, nil, "")
	require.Equal(t, 4.0, decode[domain.PetSitter](t, body).AverageRating)
}
