package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersExposed(t *testing.T) {
	before := testutil.ToFloat64(OrdersCreated)
	OrdersCreated.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(OrdersCreated))

	DaycareCheckIns.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), "petcare_marketplace_orders_total"))
	require.True(t, strings.Contains(string(body), `petcare_daycare_checkins_total{result="ok"}`))
}
