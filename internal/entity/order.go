package entity

import (
	"fmt"
	"strings"

	"shopadmin/internal/backend"
)

// Order statuses as stored in the orderStatus field.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// Statuses lists the selectable order statuses in display order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// LineItem is one product line on an order.
type LineItem struct {
	Name       string
	Quantity   int
	Price      float64
	TotalPrice float64
	ImageURL   string
}

// Total returns the line total: the stored totalPrice when present,
// otherwise quantity times unit price.
func (li LineItem) Total() float64 {
	if li.TotalPrice > 0 {
		return li.TotalPrice
	}
	q := li.Quantity
	if q == 0 {
		q = 1
	}
	return li.Price * float64(q)
}

// QuantityOrOne returns the display quantity, treating absent as one.
func (li LineItem) QuantityOrOne() int {
	if li.Quantity == 0 {
		return 1
	}
	return li.Quantity
}

// Address is the shipping destination on an order.
type Address struct {
	Name     string
	Phone    string
	Street   string
	Ward     string
	District string
	City     string
}

// Format joins the non-empty address components, N/A when all are absent.
func (a Address) Format() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Ward, a.District, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Fallback
	}
	return strings.Join(parts, ", ")
}

// Order is a customer order. OrderID is the storefront's numeric order
// number; HasOrderID distinguishes zero from absent, which matters for the
// stable sort.
type Order struct {
	ID         string
	OrderID    int64
	HasOrderID bool
	Date       string
	Status     string
	UserID     string
	Note       string
	Shipping   Address
	Items      []LineItem
}

// Total is always derived by summing line totals at read time. A stored
// aggregate, if any, is never trusted, so the total cannot drift from its
// line items.
func (o Order) Total() float64 {
	var sum float64
	for _, li := range o.Items {
		sum += li.Total()
	}
	return sum
}

// StatusOrDefault returns the display status, defaulting to Pending.
func (o Order) StatusOrDefault() string {
	if o.Status == "" {
		return StatusPending
	}
	return o.Status
}

// OrderIDLabel renders the numeric order number or the N/A placeholder.
func (o Order) OrderIDLabel() string {
	if !o.HasOrderID {
		return Fallback
	}
	return fmt.Sprintf("%d", o.OrderID)
}

// DecodeOrder maps a fetched document onto an Order.
func DecodeOrder(doc backend.Document) Order {
	f := doc.Fields
	o := Order{
		ID:     doc.ID,
		Date:   Str(f, "date"),
		Status: Str(f, "orderStatus"),
		UserID: Str(f, "userId"),
		Note:   Str(f, "note"),
	}
	if n, ok := Num(f, "orderId"); ok {
		o.OrderID = int64(n)
		o.HasOrderID = true
	}
	if addr := Sub(f, "shippingAddress"); addr != nil {
		o.Shipping = Address{
			Name:     Str(addr, "name"),
			Phone:    Str(addr, "phone"),
			Street:   Str(addr, "address"),
			Ward:     Str(addr, "ward"),
			District: Str(addr, "district"),
			City:     Str(addr, "city"),
		}
	}
	for _, raw := range List(f, "products") {
		pm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		li := LineItem{
			Name:     Str(pm, "name"),
			ImageURL: Str(pm, "imageUrl"),
		}
		if n, ok := Num(pm, "quantity"); ok {
			li.Quantity = int(n)
		}
		if n, ok := Num(pm, "price"); ok {
			li.Price = n
		}
		if n, ok := Num(pm, "totalPrice"); ok {
			li.TotalPrice = n
		}
		o.Items = append(o.Items, li)
	}
	return o
}

// MatchOrder reports whether the order matches a lowercased free-text
// filter: substring match OR-combined across order number, customer id and
// status.
func MatchOrder(o Order, lowered string) bool {
	if lowered == "" {
		return true
	}
	if o.HasOrderID && strings.Contains(fmt.Sprintf("%d", o.OrderID), lowered) {
		return true
	}
	if o.UserID != "" && strings.Contains(strings.ToLower(o.UserID), lowered) {
		return true
	}
	if o.Status != "" && strings.Contains(strings.ToLower(o.Status), lowered) {
		return true
	}
	return false
}
