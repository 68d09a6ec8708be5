package domain

import "time"

type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	ID          string `json:"id" db:"id"`
	Label       string `json:"label" db:"label"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description,omitempty" db:"description"`
}

// Product prices are integers in the smallest currency unit.
type Product struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"sellerId"`
	SellerName    string    `json:"sellerName,omitempty"`
	SellerSlug    string    `json:"sellerSlug,omitempty"`
	CategoryID    string    `json:"categoryId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"originalPrice,omitempty"`
	Available     bool      `json:"available"`
	Quantity      int64     `json:"quantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Contact struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Neighborhood string   `json:"neighborhood"`
	Commune      string   `json:"commune"`
	City         string   `json:"city"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

type OrderItem struct {
	ProductID string `json:"productId" db:"product_id"`
	Title     string `json:"title" db:"title"`
	Quantity  int64  `json:"quantity" db:"quantity"`
	UnitPrice int64  `json:"unitPrice" db:"unit_price"`
	LineTotal int64  `json:"lineTotal" db:"line_total"`
}

type Order struct {
	ID        string      `json:"id"`
	Contact   Contact     `json:"contact"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
