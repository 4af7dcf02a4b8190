package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// --- Core Models ---

// User represents a user in the system (Admin, Merchant, or Staff)
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	Phone          *string   `json:"phone,omitempty"`
	AssignedShopID *string   `json:"assigned_shop_id,omitempty"`
	MerchantID     *string   `json:"merchant_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaleRecord is a single historical sale as read from the sales table.
// Only SaleDate, TotalAmount and the item ids are used by the forecasting engine.
type SaleRecord struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop_id,omitempty"`
	SaleDate    time.Time       `json:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []ProductRef    `json:"items"`
}

// ProductRef is one line of a sale, pointing at an inventory item.
type ProductRef struct {
	InventoryItemID string  `json:"inventory_item_id"`
	ItemName        *string `json:"item_name,omitempty"`
	QuantitySold    int     `json:"quantity_sold"`
}

// HasItem reports whether any line of the sale references itemID.
func (s SaleRecord) HasItem(itemID string) bool {
	for _, p := range s.Items {
		if p.InventoryItemID == itemID {
			return true
		}
	}
	return false
}
