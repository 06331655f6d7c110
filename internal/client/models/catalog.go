package models

// Product is a single catalog record as served by GET /products.
type Product struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// GeoRecord is a single geography record as served by GET /geography.
type GeoRecord struct {
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	State      string `json:"state"`
	Region     string `json:"region"`
	Country    string `json:"country"`
}
