package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"petcare/internal/domain"
	"petcare/internal/services"
)

func TestStockMovementsLedger(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	inv := services.NewInventoryService(db)

	m, err := inv.Move(ctx, "b-demo", services.MoveInput{ProductID: "pr-shampoo", Type: "purchase", Quantity: 8, Reason: "supplier"})
	require.NoError(t, err)
	require.Equal(t, 12, m.PreviousStock)
	require.Equal(t, 20, m.NewStock)

	m, err = inv.Move(ctx, "b-demo", services.MoveInput{ProductID: "pr-shampoo", Type: domain.MoveLoss, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, 20, m.PreviousStock)
	require.Equal(t, 15, m.NewStock)

	_, err = inv.Move(ctx, "b-demo", services.MoveInput{ProductID: "pr-shampoo", Type: domain.MoveExpired, Quantity: 16})
	require.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = inv.Move(ctx, "b-demo", services.MoveInput{ProductID: "pr-shampoo", Type: "GIFT", Quantity: 1})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = inv.Move(ctx, "b-platform", services.MoveInput{ProductID: "pr-shampoo", Type: domain.MovePurchase, Quantity: 1})
	require.ErrorIs(t, err, services.ErrNotFound)

	moves, err := inv.Movements(ctx, "b-demo", "pr-shampoo")
	require.NoError(t, err)
	require.Len(t, moves, 2)

	p, err := services.NewProductService(inv.Products).Get(ctx, "b-demo", "pr-shampoo")
	require.NoError(t, err)
	require.Equal(t, 15, p.CurrentStock)
}

func TestProductLowStock(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	products := services.NewProductService(services.NewInventoryService(db).Products)

	p, err := products.Create(ctx, "b-demo", services.ProductInput{Name: "Collar", Price: 30, InitialStock: 1, MinStock: 2})
	require.NoError(t, err)

	low, err := products.LowStock(ctx, "b-demo")
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, p.ID, low[0].ID)

	all, err := products.List(ctx, "b-demo", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSaleMovesStockAndRegisterCloses(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	inv := services.NewInventoryService(db)
	sales := services.NewSalesService(db, inv)
	registers := services.NewCashRegisterService(db)

	s1, err := sales.Create(ctx, "b-demo", services.SaleInput{
		Items:         []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 2}},
		PaymentMethod: "CASH",
		Date:          "2025-03-01",
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, s1.TotalAmount)

	_, err = sales.Create(ctx, "b-demo", services.SaleInput{
		Items:         []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 1}},
		Discount:      5,
		PaymentMethod: "CARD",
		Date:          "2025-03-01",
	})
	require.NoError(t, err)

	_, err = sales.Create(ctx, "b-demo", services.SaleInput{
		Items:         []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 100}},
		PaymentMethod: "CASH",
		Date:          "2025-03-01",
	})
	require.ErrorIs(t, err, services.ErrInsufficientStock)

	moves, err := inv.Movements(ctx, "b-demo", "pr-shampoo")
	require.NoError(t, err)
	require.Len(t, moves, 2)
	require.Equal(t, domain.MoveSale, moves[0].Type)

	live, err := registers.Get(ctx, "b-demo", "2025-03-01")
	require.NoError(t, err)
	require.False(t, live.IsClosed)
	require.Equal(t, 2, live.SalesCount)
	require.Equal(t, 70.0, live.TotalSales)
	require.Equal(t, 50.0, live.CashTotal)
	require.Equal(t, 20.0, live.CardTotal)

	closed, err := registers.Close(ctx, "b-demo", "2025-03-01")
	require.NoError(t, err)
	require.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosedAt)

	again, err := registers.Close(ctx, "b-demo", "2025-03-01")
	require.NoError(t, err)
	require.Equal(t, closed.ID, again.ID)
	require.Equal(t, 70.0, again.TotalSales)

	_, err = sales.Create(ctx, "b-demo", services.SaleInput{
		Items:         []services.SaleLine{{ProductID: "pr-shampoo", Quantity: 1}},
		PaymentMethod: "PIX",
		Date:          "2025-03-01",
	})
	require.ErrorIs(t, err, services.ErrConflict)
}
