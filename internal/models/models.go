package models

import "time"

// Availability statuses for a product
const (
	StatusAvailable   = "available"
	StatusLow         = "low"
	StatusUnavailable = "unavailable"
)

// Staff positions
const (
	PositionStaff      = "staff"
	PositionBranchHead = "branch-head"
)

// Branches a staff member can be assigned to
var Branches = []string{"branch-1", "branch-2", "branch-3"}

// Roles allowed into administrative listings
const (
	RoleAdmin   = "admin"
	RoleManager = "manajer"
)

// Product represents a stockable item
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Price     float64   `db:"price" json:"price"`
	Unit      string    `db:"unit" json:"unit"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Status    string    `db:"status" json:"status"`
	Image     *string   `db:"image" json:"image,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Reservation represents a pending claim ("cart entry") against a product's
// stock. The reserved quantity has already been deducted from the product.
type Reservation struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Staff represents a personnel record, independent of the inventory flow
type Staff struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Position  string    `db:"position" json:"position"`
	Branch    *string   `db:"branch" json:"branch,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Status is a name-only lookup row
type Status struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ValidPosition reports whether p is a known staff position
func ValidPosition(p string) bool {
	return p == PositionStaff || p == PositionBranchHead
}

// ValidBranch reports whether b is a known branch name
func ValidBranch(b string) bool {
	for _, known := range Branches {
		if b == known {
			return true
		}
	}
	return false
}

// StatusForQuantity derives the availability status from a quantity and the
// low-stock threshold
func StatusForQuantity(quantity, lowThreshold int) string {
	switch {
	case quantity <= 0:
		return StatusUnavailable
	case quantity < lowThreshold:
		return StatusLow
	default:
		return StatusAvailable
	}
}
