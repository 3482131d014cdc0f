package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	p, ok := Phone("+55 (11) 99999-0000")
	require.True(t, ok)
	require.Equal(t, "+5511999990000", p)

	_, ok = Phone("12ab")
	require.False(t, ok)
}

func TestDate(t *testing.T) {
	d, ok := Date("2025-01-10")
	require.True(t, ok)
	require.Equal(t, 10, d.Day())

	_, ok = Date("10/01/2025")
	require.False(t, ok)
}

func TestMoneyAndPercent(t *testing.T) {
	require.True(t, Money(0))
	require.False(t, Money(-0.01))
	require.False(t, Money(math.NaN()))
	require.True(t, Percent(100))
	require.False(t, Percent(100.5))
}

func TestPassword(t *testing.T) {
	require.True(t, Password("Passw0rd!"))
	require.False(t, Password("password"))
	require.False(t, Password("Sh0rt!"))
}

func TestIDAndQuery(t *testing.T) {
	_, ok := ID("l-kibble")
	require.True(t, ok)
	_, ok = ID("x; DROP TABLE")
	require.False(t, ok)

	q, ok := Q("  kibble ")
	require.True(t, ok)
	require.Equal(t, "kibble", q)
	_, ok = Q("<script>")
	require.False(t, ok)
}

func TestBusinessKind(t *testing.T) {
	k, ok := BusinessKind("pet_shop")
	require.True(t, ok)
	require.Equal(t, "PET_SHOP", k)
	_, ok = BusinessKind("PLATFORM")
	require.False(t, ok)
}
