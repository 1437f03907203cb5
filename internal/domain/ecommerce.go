package domain

import "time"

// ECommerce is one order document from the sample e-commerce index.
// ID is always taken from the hit metadata, never from the stored source.
type ECommerce struct {
	ID                  string        `json:"id"`
	CustomerFirstName   string        `json:"customer_first_name"`
	CustomerLastName    string        `json:"customer_last_name"`
	CustomerFullName    string        `json:"customer_full_name"`
	CustomerGender      string        `json:"customer_gender,omitempty"`
	CustomerID          string        `json:"customer_id,omitempty"`
	CustomerPhone       string        `json:"customer_phone,omitempty"`
	Email               string        `json:"email,omitempty"`
	User                string        `json:"user,omitempty"`
	Category            []string      `json:"category"`
	Manufacturer        []string      `json:"manufacturer,omitempty"`
	SKU                 []string      `json:"sku,omitempty"`
	Currency            string        `json:"currency,omitempty"`
	DayOfWeek           string        `json:"day_of_week,omitempty"`
	DayOfWeekI          int           `json:"day_of_week_i"`
	OrderDate           time.Time     `json:"order_date"`
	OrderID             int           `json:"order_id"`
	TaxfulTotalPrice    float64       `json:"taxful_total_price"`
	TaxlessTotalPrice   float64       `json:"taxless_total_price"`
	TotalQuantity       int           `json:"total_quantity"`
	TotalUniqueProducts int           `json:"total_unique_products"`
	Products            []ProductLine `json:"products,omitempty"`
}

// ProductLine is one product inside an order.
type ProductLine struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"`
	BasePrice    float64 `json:"base_price"`
	Quantity     int     `json:"quantity"`
	SKU          string  `json:"sku"`
}

// Field names of the e-commerce index that queries target.
const (
	FieldCustomerFirstNameKeyword = "customer_first_name.keyword"
	FieldCustomerFullNameKeyword  = "customer_full_name.keyword"
	FieldCustomerFullName         = "customer_full_name"
	FieldCategory                 = "category"
	FieldTaxfulTotalPrice         = "taxful_total_price"
)
