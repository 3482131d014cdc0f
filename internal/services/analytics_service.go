package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"petcare/internal/domain"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

type AnalyticsService struct {
	Sales     *repos.SaleRepo
	Boardings *repos.BoardingRepo
	Daycare   *repos.DaycareRepo
	Products  *repos.ProductRepo
	Orders    *repos.OrderRepo
	Now       func() time.Time
}

func NewAnalyticsService(db *sqlx.DB) *AnalyticsService {
	return &AnalyticsService{
		Sales:     repos.NewSaleRepo(db),
		Boardings: repos.NewBoardingRepo(db),
		Daycare:   repos.NewDaycareRepo(db),
		Products:  repos.NewProductRepo(db),
		Orders:    repos.NewOrderRepo(db),
		Now:       time.Now,
	}
}

// Dashboard summarises one business day; an empty date means today.
func (s *AnalyticsService) Dashboard(ctx context.Context, businessID, date string) (domain.Dashboard, error) {
	day := s.Now().Format(validate.DateLayout)
	if date != "" {
		var err error
		if day, err = parseDay(date); err != nil {
			return domain.Dashboard{}, err
		}
	}
	d := domain.Dashboard{Date: day}

	reg, err := s.Sales.Aggregate(ctx, businessID, day)
	if err != nil {
		return d, err
	}
	d.SalesCount, d.SalesTotal = reg.SalesCount, reg.TotalSales

	if d.ActiveBoardings, err = s.Boardings.CountActive(ctx, businessID); err != nil {
		return d, err
	}
	if d.DaycareAttendance, err = s.Daycare.CountAttendance(ctx, businessID, day); err != nil {
		return d, err
	}
	low, err := s.Products.LowStock(ctx, businessID)
	if err != nil {
		return d, err
	}
	d.LowStockProducts = len(low)
	if d.PendingMarketOrders, err = s.Orders.CountPendingForBusiness(ctx, businessID); err != nil {
		return d, err
	}
	if d.MarketplaceRevenue, err = s.Orders.DeliveredRevenueForBusiness(ctx, businessID); err != nil {
		return d, err
	}
	return d, nil
}
