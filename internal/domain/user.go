package domain

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID         string  `db:"id" json:"id"`
	BusinessID string  `db:"business_id" json:"businessId"`
	Email      string  `db:"email" json:"email"`
	Name       string  `db:"name" json:"name"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	Hash       string  `db:"password_hash" json:"-"`
	Role       string  `db:"role" json:"role"`
}

// Business is the tenant. Every owned row carries its id.
type Business struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Kind      string `db:"kind" json:"kind"` // CLINIC | PET_SHOP | HOTEL | DAYCARE | GROOMER
	CreatedAt string `db:"created_at" json:"createdAt"`
}
