package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"shopadmin/internal/backend"
)

// Product is a storefront catalogue entry.
type Product struct {
	ID              string
	Name            string
	Category        string
	Price           float64
	HasPrice        bool
	OfferPercentage int
	Colors          []string
	Sizes           []string
	Images          []string
	Description     string
}

// DecodeProduct maps a fetched document onto a Product.
//
// The live data contains a misspelled legacy field "desciption" alongside
// "description" on some documents. The fallback chain is resolved here, at
// the boundary, and nowhere else: description wins when both are present.
func DecodeProduct(doc backend.Document) Product {
	f := doc.Fields
	p := Product{
		ID:       doc.ID,
		Name:     Str(f, "name"),
		Category: Str(f, "category"),
	}
	if n, ok := Num(f, "price"); ok {
		p.Price = n
		p.HasPrice = true
	}
	if n, ok := Num(f, "offerPercentage"); ok {
		p.OfferPercentage = int(n)
	}
	p.Description = Str(f, "description")
	if p.Description == "" {
		p.Description = Str(f, "desciption")
	}
	for _, c := range List(f, "colors") {
		p.Colors = append(p.Colors, colorLabel(c))
	}
	for _, s := range List(f, "sizes") {
		switch v := s.(type) {
		case string:
			p.Sizes = append(p.Sizes, v)
		case float64:
			p.Sizes = append(p.Sizes, fmt.Sprintf("%g", v))
		}
	}
	for _, img := range List(f, "images") {
		if v, ok := img.(string); ok {
			p.Images = append(p.Images, v)
		}
	}
	return p
}

// colorLabel renders a stored color value. Colors are stored either as
// names or as (sometimes negative) packed integers; integers become hex
// swatch codes.
func colorLabel(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		n := int64(c)
		if n < 0 {
			n = int64(math.Abs(c))
		}
		return fmt.Sprintf("#%06x", n&0xffffff)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PriceLabel renders the price in storefront format, empty when absent.
func (p Product) PriceLabel() string {
	if !p.HasPrice {
		return ""
	}
	return FormatVND(p.Price)
}

// MatchProduct reports whether the product matches a lowercased free-text
// filter across name and category.
func MatchProduct(p Product, lowered string) bool {
	if lowered == "" {
		return true
	}
	if p.Name != "" && strings.Contains(strings.ToLower(p.Name), lowered) {
		return true
	}
	if p.Category != "" && strings.Contains(strings.ToLower(p.Category), lowered) {
		return true
	}
	return false
}

// ValidateProductForm checks the create/edit form fields before a save.
func ValidateProductForm(name, price string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("product name is required: %w", backend.ErrValidation)
	}
	if strings.TrimSpace(price) == "" {
		return fmt.Errorf("product price is required: %w", backend.ErrValidation)
	}
	if _, err := ParsePrice(price); err != nil {
		return err
	}
	return nil
}

// ParsePrice parses a price form value. Validation and save share this
// parse, so a value that validates always converts to the number written.
func ParsePrice(price string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("product price must be a non-negative number: %w", backend.ErrValidation)
	}
	return v, nil
}
