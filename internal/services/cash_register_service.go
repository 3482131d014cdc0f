package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"petcare/internal/domain"
	"petcare/internal/metrics"
	"petcare/internal/repos"
	"petcare/internal/validate"
)

// CashRegisterService reports the day's takings and freezes them on close.
type CashRegisterService struct {
	DB    *sqlx.DB
	Sales *repos.SaleRepo
	Now   func() time.Time
}

func NewCashRegisterService(db *sqlx.DB) *CashRegisterService {
	return &CashRegisterService{DB: db, Sales: repos.NewSaleRepo(db), Now: time.Now}
}

func parseDay(date string) (string, error) {
	d, ok := validate.Date(date)
	if !ok {
		return "", invalid("invalid date %q", date)
	}
	return d.Format(validate.DateLayout), nil
}

// Get returns the stored snapshot for a closed day, or the live aggregate.
func (s *CashRegisterService) Get(ctx context.Context, businessID, date string) (*domain.CashRegister, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	reg, err := s.Sales.Register(ctx, businessID, day)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	live, err := s.Sales.Aggregate(ctx, businessID, day)
	if err != nil {
		return nil, err
	}
	return &live, nil
}

// Close snapshots the aggregate once; closing again returns the first snapshot.
func (s *CashRegisterService) Close(ctx context.Context, businessID, date string) (*domain.CashRegister, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	var out *domain.CashRegister
	var inserted bool
	err = inTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sales := s.Sales.WithTx(tx)
		reg, err := sales.Aggregate(ctx, businessID, day)
		if err != nil {
			return err
		}
		closedAt := s.Now().UTC().Format(time.RFC3339)
		reg.ID = uuid.NewString()
		reg.IsClosed = true
		reg.ClosedAt = &closedAt
		if inserted, err = sales.InsertRegister(ctx, reg); err != nil {
			return err
		}
		out, err = sales.Register(ctx, businessID, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		metrics.CashRegisterCloses.Inc()
	}
	return out, nil
}
