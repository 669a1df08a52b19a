package models

// Product is a catalog entry. Products are loaded once and never mutated.
type Product struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       int64   `json:"price" yaml:"price"` // whole rupees
	Image       string  `json:"image" yaml:"image"`
	Category    string  `json:"category" yaml:"category"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Stock       int     `json:"stock" yaml:"stock"`
	Featured    bool    `json:"featured" yaml:"featured"`
}
