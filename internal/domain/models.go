package domain

// ---------- Marketplace ----------

type Seller struct {
	ID             string  `db:"id" json:"id"`
	BusinessID     string  `db:"business_id" json:"businessId"`
	Name           string  `db:"name" json:"name"`
	CommissionRate float64 `db:"commission_rate" json:"commissionRate"`
	AverageRating  float64 `db:"average_rating" json:"averageRating"`
	TotalReviews   int     `db:"total_reviews" json:"totalReviews"`
	IsActive       bool    `db:"is_active" json:"isActive"`
	CreatedAt      string  `db:"created_at" json:"createdAt"`
}

type Listing struct {
	ID            string  `db:"id" json:"id"`
	SellerID      string  `db:"seller_id" json:"sellerId"`
	Title         string  `db:"title" json:"title"`
	SKU           string  `db:"sku" json:"sku"`
	Description   string  `db:"description" json:"description"`
	Price         float64 `db:"price" json:"price"`
	Stock         int     `db:"stock" json:"stock"`
	SalesCount    int     `db:"sales_count" json:"salesCount"`
	Status        string  `db:"status" json:"status"` // DRAFT | PENDING_REVIEW | ACTIVE | REJECTED
	AverageRating float64 `db:"average_rating" json:"averageRating"`
	TotalReviews  int     `db:"total_reviews" json:"totalReviews"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
	UpdatedAt     string  `db:"updated_at" json:"updatedAt"`
}

type MarketplaceOrder struct {
	ID              string      `db:"id" json:"id"`
	OrderNumber     string      `db:"order_number" json:"orderNumber"`
	SellerID        string      `db:"seller_id" json:"sellerId"`
	BuyerName       string      `db:"buyer_name" json:"buyerName"`
	BuyerEmail      string      `db:"buyer_email" json:"buyerEmail"`
	BuyerPhone      string      `db:"buyer_phone" json:"buyerPhone"`
	ShippingAddress string      `db:"shipping_address" json:"shippingAddress"`
	Subtotal        float64     `db:"subtotal" json:"subtotal"`
	ShippingCost    float64     `db:"shipping_cost" json:"shippingCost"`
	Discount        float64     `db:"discount" json:"discount"`
	TotalAmount     float64     `db:"total_amount" json:"totalAmount"`
	Commission      float64     `db:"commission" json:"commission"`
	SellerPayout    float64     `db:"seller_payout" json:"sellerPayout"`
	PaymentMethod   string      `db:"payment_method" json:"paymentMethod"`
	Status          string      `db:"status" json:"status"`
	TrackingCode    *string     `db:"tracking_code" json:"trackingCode,omitempty"`
	ShippedAt       *string     `db:"shipped_at" json:"shippedAt,omitempty"`
	DeliveredAt     *string     `db:"delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt     *string     `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt       string      `db:"created_at" json:"createdAt"`
	Items           []OrderItem `db:"-" json:"items"`
}

// OrderItem is a price snapshot taken when the order is created.
type OrderItem struct {
	ID         string  `db:"id" json:"id"`
	OrderID    string  `db:"order_id" json:"orderId"`
	ListingID  string  `db:"listing_id" json:"listingId"`
	Title      string  `db:"title" json:"title"`
	SKU        string  `db:"sku" json:"sku"`
	Quantity   int     `db:"quantity" json:"quantity"`
	UnitPrice  float64 `db:"unit_price" json:"unitPrice"`
	TotalPrice float64 `db:"total_price" json:"totalPrice"`
}

type Review struct {
	ID          string `db:"id" json:"id"`
	ListingID   string `db:"listing_id" json:"listingId"`
	SellerID    string `db:"seller_id" json:"sellerId"`
	AuthorName  string `db:"author_name" json:"authorName"`
	Rating      int    `db:"rating" json:"rating"`
	Comment     string `db:"comment" json:"comment"`
	IsPublished bool   `db:"is_published" json:"isPublished"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// ---------- Retail ----------

type Product struct {
	ID           string  `db:"id" json:"id"`
	BusinessID   string  `db:"business_id" json:"businessId"`
	Name         string  `db:"name" json:"name"`
	SKU          string  `db:"sku" json:"sku"`
	Price        float64 `db:"price" json:"price"`
	CurrentStock int     `db:"current_stock" json:"currentStock"`
	MinStock     int     `db:"min_stock" json:"minStock"`
	IsActive     bool    `db:"is_active" json:"isActive"`
	CreatedAt    string  `db:"created_at" json:"createdAt"`
	UpdatedAt    string  `db:"updated_at" json:"updatedAt"`
}

type StockMovement struct {
	ID            string  `db:"id" json:"id"`
	BusinessID    string  `db:"business_id" json:"businessId"`
	ProductID     string  `db:"product_id" json:"productId"`
	Type          string  `db:"type" json:"type"`
	Quantity      int     `db:"quantity" json:"quantity"`
	PreviousStock int     `db:"previous_stock" json:"previousStock"`
	NewStock      int     `db:"new_stock" json:"newStock"`
	Reason        string  `db:"reason" json:"reason"`
	ReferenceID   *string `db:"reference_id" json:"referenceId,omitempty"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
}

type Sale struct {
	ID            string     `db:"id" json:"id"`
	BusinessID    string     `db:"business_id" json:"businessId"`
	SaleNumber    string     `db:"sale_number" json:"saleNumber"`
	SaleDate      string     `db:"sale_date" json:"saleDate"`
	Subtotal      float64    `db:"subtotal" json:"subtotal"`
	Discount      float64    `db:"discount" json:"discount"`
	TotalAmount   float64    `db:"total_amount" json:"totalAmount"`
	PaymentMethod string     `db:"payment_method" json:"paymentMethod"`
	CreatedAt     string     `db:"created_at" json:"createdAt"`
	Items         []SaleItem `db:"-" json:"items"`
}

type SaleItem struct {
	ID         string  `db:"id" json:"id"`
	SaleID     string  `db:"sale_id" json:"saleId"`
	ProductID  string  `db:"product_id" json:"productId"`
	Name       string  `db:"name" json:"name"`
	Quantity   int     `db:"quantity" json:"quantity"`
	UnitPrice  float64 `db:"unit_price" json:"unitPrice"`
	TotalPrice float64 `db:"total_price" json:"totalPrice"`
}

type CashRegister struct {
	ID         string  `db:"id" json:"id,omitempty"`
	BusinessID string  `db:"business_id" json:"businessId"`
	Date       string  `db:"date" json:"date"`
	SalesCount int     `db:"sales_count" json:"salesCount"`
	TotalSales float64 `db:"total_sales" json:"totalSales"`
	CashTotal  float64 `db:"cash_total" json:"cashTotal"`
	CardTotal  float64 `db:"card_total" json:"cardTotal"`
	PixTotal   float64 `db:"pix_total" json:"pixTotal"`
	OtherTotal float64 `db:"other_total" json:"otherTotal"`
	IsClosed   bool    `db:"is_closed" json:"isClosed"`
	ClosedAt   *string `db:"closed_at" json:"closedAt,omitempty"`
}

// ---------- Boarding ----------

type BoardingRoom struct {
	ID              string  `db:"id" json:"id"`
	BusinessID      string  `db:"business_id" json:"businessId"`
	Name            string  `db:"name" json:"name"`
	Capacity        int     `db:"capacity" json:"capacity"`
	DailyRate       float64 `db:"daily_rate" json:"dailyRate"`
	AcceptedSpecies string  `db:"accepted_species" json:"acceptedSpecies"` // comma separated, empty = any
	AcceptedSizes   string  `db:"accepted_sizes" json:"acceptedSizes"`
	IsActive        bool    `db:"is_active" json:"isActive"`
	CreatedAt       string  `db:"created_at" json:"createdAt"`
}

type Boarding struct {
	ID             string  `db:"id" json:"id"`
	BusinessID     string  `db:"business_id" json:"businessId"`
	RoomID         string  `db:"room_id" json:"roomId"`
	PetID          string  `db:"pet_id" json:"petId"`
	PetSpecies     string  `db:"pet_species" json:"petSpecies"`
	PetSize        string  `db:"pet_size" json:"petSize"`
	CheckInDate    string  `db:"check_in_date" json:"checkInDate"`
	CheckOutDate   string  `db:"check_out_date" json:"checkOutDate"`
	OccupiedUntil  string  `db:"occupied_until" json:"-"`
	TotalDays      int     `db:"total_days" json:"totalDays"`
	DailyRate      float64 `db:"daily_rate" json:"dailyRate"`
	Subtotal       float64 `db:"subtotal" json:"subtotal"`
	Discount       float64 `db:"discount" json:"discount"`
	ExtraServices  float64 `db:"extra_services" json:"extraServices"`
	TotalAmount    float64 `db:"total_amount" json:"totalAmount"`
	Status         string  `db:"status" json:"status"`
	ActualCheckIn  *string `db:"actual_check_in" json:"actualCheckIn,omitempty"`
	ActualCheckOut *string `db:"actual_check_out" json:"actualCheckOut,omitempty"`
	Notes          string  `db:"notes" json:"notes"`
	CreatedAt      string  `db:"created_at" json:"createdAt"`
}

type RoomAvailability struct {
	RoomID    string `json:"roomId"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Capacity  int    `json:"capacity"`
	Conflicts int    `json:"conflicts"`
	Available bool   `json:"available"`
}

// ---------- Daycare ----------

type DaycarePackage struct {
	ID           string  `db:"id" json:"id"`
	BusinessID   string  `db:"business_id" json:"businessId"`
	Name         string  `db:"name" json:"name"`
	DaysIncluded int     `db:"days_included" json:"daysIncluded"`
	Price        float64 `db:"price" json:"price"`
	ValidityDays int     `db:"validity_days" json:"validityDays"`
	IsActive     bool    `db:"is_active" json:"isActive"`
	CreatedAt    string  `db:"created_at" json:"createdAt"`
}

type DaycareEnrollment struct {
	ID               string  `db:"id" json:"id"`
	BusinessID       string  `db:"business_id" json:"businessId"`
	PackageID        string  `db:"package_id" json:"packageId"`
	PetID            string  `db:"pet_id" json:"petId"`
	TotalCredits     int     `db:"total_credits" json:"totalCredits"`
	UsedCredits      int     `db:"used_credits" json:"usedCredits"`
	RemainingCredits int     `db:"remaining_credits" json:"remainingCredits"`
	PricePaid        float64 `db:"price_paid" json:"pricePaid"`
	StartDate        string  `db:"start_date" json:"startDate"`
	ExpiresAt        *string `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt        string  `db:"created_at" json:"createdAt"`
}

type DaycareAttendance struct {
	ID           string  `db:"id" json:"id"`
	BusinessID   string  `db:"business_id" json:"businessId"`
	EnrollmentID string  `db:"enrollment_id" json:"enrollmentId"`
	Date         string  `db:"date" json:"date"`
	CheckInTime  string  `db:"check_in_time" json:"checkInTime"`
	CheckOutTime *string `db:"check_out_time" json:"checkOutTime,omitempty"`
	Status       string  `db:"status" json:"status"`
}

// ---------- Pet sitters ----------

type PetSitter struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Email         string  `db:"email" json:"email"`
	DailyRate     float64 `db:"daily_rate" json:"dailyRate"`
	AverageRating float64 `db:"average_rating" json:"averageRating"`
	TotalReviews  int     `db:"total_reviews" json:"totalReviews"`
	IsActive      bool    `db:"is_active" json:"isActive"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
}

type PetSitterBooking struct {
	ID           string  `db:"id" json:"id"`
	SitterID     string  `db:"sitter_id" json:"sitterId"`
	ClientName   string  `db:"client_name" json:"clientName"`
	ClientEmail  string  `db:"client_email" json:"clientEmail"`
	PetID        string  `db:"pet_id" json:"petId"`
	StartDate    string  `db:"start_date" json:"startDate"`
	EndDate      string  `db:"end_date" json:"endDate"`
	TotalDays    int     `db:"total_days" json:"totalDays"`
	DailyRate    float64 `db:"daily_rate" json:"dailyRate"`
	TotalAmount  float64 `db:"total_amount" json:"totalAmount"`
	PlatformFee  float64 `db:"platform_fee" json:"platformFee"`
	SitterPayout float64 `db:"sitter_payout" json:"sitterPayout"`
	Status       string  `db:"status" json:"status"`
	PayoutID     *string `db:"payout_id" json:"payoutId,omitempty"`
	CreatedAt    string  `db:"created_at" json:"createdAt"`
}

type SitterReview struct {
	ID        string `db:"id" json:"id"`
	SitterID  string `db:"sitter_id" json:"sitterId"`
	BookingID string `db:"booking_id" json:"bookingId"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type SitterPayout struct {
	ID            string  `db:"id" json:"id"`
	SitterID      string  `db:"sitter_id" json:"sitterId"`
	Amount        float64 `db:"amount" json:"amount"`
	BookingsCount int     `db:"bookings_count" json:"bookingsCount"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
}

// ---------- Analytics ----------

type Dashboard struct {
	Date                string  `json:"date"`
	SalesCount          int     `json:"salesCount"`
	SalesTotal          float64 `json:"salesTotal"`
	ActiveBoardings     int     `json:"activeBoardings"`
	DaycareAttendance   int     `json:"daycareAttendance"`
	LowStockProducts    int     `json:"lowStockProducts"`
	PendingMarketOrders int     `json:"pendingMarketplaceOrders"`
	MarketplaceRevenue  float64 `json:"marketplaceRevenue"`
}
