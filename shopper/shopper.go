// Package shopper asks a language model for product suggestions matching a free-text query.
package shopper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrEmptyQuery      = errors.New("query is required")
	ErrNotConfigured   = errors.New("personal shopper is not configured")
	ErrInvalidResponse = errors.New("invalid response from model")
)

// MinSuggestions is the number of entries Suggest always returns at least.
const MinSuggestions = 5

// Suggestion is one product proposed by the model.
type Suggestion struct {
	Company        string `json:"company"`
	Model          string `json:"model"`
	Price          string `json:"price"`
	Image          string `json:"image"`
	Description    string `json:"description"`
	Link           string `json:"link"`
	Features       string `json:"features"`
	Specifications string `json:"specifications"`
}

// Placeholder fills the list when the model returns fewer than MinSuggestions.
var Placeholder = Suggestion{
	Company:        "Placeholder",
	Model:          "Product",
	Price:          "₹0",
	Image:          "https://via.placeholder.com/150?text=No+Image",
	Description:    "No description available.",
	Link:           "#",
	Features:       "N/A",
	Specifications: "N/A",
}

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Shopper struct {
	gen Generator
}

// New returns a Shopper. A nil generator makes every Suggest fail with ErrNotConfigured.
func New(gen Generator) *Shopper {
	return &Shopper{gen: gen}
}

func (s *Shopper) Configured() bool {
	return s != nil && s.gen != nil
}

// Suggest asks the model for products matching query.
func (s *Shopper) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	text, err := s.gen.Generate(ctx, Prompt(query))
	if err != nil {
		log.Printf("[shopper.suggest] generate failed: %v", err)
		return nil, err
	}
	out, err := Parse(text)
	if err != nil {
		log.Printf("[shopper.suggest] %v", err)
		return nil, err
	}
	return out, nil
}

// Prompt builds the instruction sent to the model.
func Prompt(query string) string {
	return fmt.Sprintf(`You are an ecommerce shopping assistant.
User query: %q

Return a JSON array with each product having:
- company name
- model name
- estimated price (INR)
- image link (use stock image if real not possible)
- short 2-line description
- official product link to source website (product page URL)
- product features (comma-separated)
- product specifications (comma-separated)

Example Output:
[
  {
    "company": "Cello",
    "model": "Swift Bottle",
    "price": "₹29",
    "image": "https://example.com/cello_swift.jpg",
    "description": "Durable lightweight plastic water bottle. Ideal for daily use.",
    "link": "https://example.com/cello-swift",
    "features": "BPA-free, Lightweight, Leakproof",
    "specifications": "Capacity: 500ml, Material: Plastic"
  }
]
ONLY return pure JSON without any extra explanation.`, query)
}

// Parse extracts the JSON array between the first '[' and the last ']' of
// text and pads it to MinSuggestions.
func Parse(text string) ([]Suggestion, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end < start {
		return nil, ErrInvalidResponse
	}

	var out []Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	for len(out) < MinSuggestions {
		out = append(out, Placeholder)
	}
	return out, nil
}
