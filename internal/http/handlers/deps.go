package handlers

import (
	"github.com/jmoiron/sqlx"

	"petcare/internal/config"
	"petcare/internal/repos"
	"petcare/internal/services"
)

type Deps struct {
	AuthHandler      *AuthHandler
	ListingHandler   *ListingHandler
	OrderHandler     *OrderHandler
	BoardingHandler  *BoardingHandler
	DaycareHandler   *DaycareHandler
	ProductHandler   *ProductHandler
	SalesHandler     *SalesHandler
	PetSitterHandler *PetSitterHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	sellerRepo := repos.NewSellerRepo(db)
	listingRepo := repos.NewListingRepo(db)
	invRepo := repos.NewInventoryRepo(db)

	sellerSvc := services.NewSellerService(sellerRepo)
	listingSvc := services.NewListingService(sellerSvc, listingRepo, invRepo)
	orderSvc := services.NewOrderService(db)
	reviewSvc := services.NewReviewService(db)
	invSvc := services.NewInventoryService(db)
	productSvc := services.NewProductService(invSvc.Products)
	salesH := &SalesHandler{
		Sales:     services.NewSalesService(db, invSvc),
		Registers: services.NewCashRegisterService(db),
		Analytics: services.NewAnalyticsService(db),
	}

	return &Deps{
		AuthHandler:      &AuthHandler{Auth: auth, CookieSecure: cfg.CookieSecure},
		ListingHandler:   &ListingHandler{Listings: listingSvc, ReviewSvc: reviewSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc, Sellers: sellerSvc},
		BoardingHandler:  &BoardingHandler{Boarding: services.NewBoardingService(db)},
		DaycareHandler:   &DaycareHandler{Daycare: services.NewDaycareService(db)},
		ProductHandler:   &ProductHandler{Products: productSvc, Inventory: invSvc},
		SalesHandler:     salesH,
		PetSitterHandler: &PetSitterHandler{Sitters: services.NewPetSitterService(db)},
	}
}
