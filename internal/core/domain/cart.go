package domain

import (
	"math"
	"strings"
)

// CartItem is one line of the shopper's server-side cart.
type CartItem struct {
	ID        ID      `json:"id"`
	ProductID ID      `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Stock     int64   `json:"stock,omitempty"`
}

// Cart is the client-side snapshot of the remote cart. It is refetched on
// every read and never persisted.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Count is the number of distinct lines in the cart.
func (c Cart) Count() int { return len(c.Items) }

// Empty reports whether the cart holds no lines.
func (c Cart) Empty() bool { return len(c.Items) == 0 }

// Subtotal sums price times quantity over every line.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// PricingPolicy holds the delivery rules. The storefront disagreed with itself
// on the free-delivery cutoff, so both values come from configuration.
type PricingPolicy struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
}

// DefaultPricing matches the cart screen: free delivery above 500, else 30.
var DefaultPricing = PricingPolicy{FreeDeliveryThreshold: 500, DeliveryFee: 30}

// DeliveryCharge is zero for an empty cart or above the threshold.
func (p PricingPolicy) DeliveryCharge(subtotal float64) float64 {
	if subtotal <= 0 || subtotal > p.FreeDeliveryThreshold {
		return 0
	}
	return p.DeliveryFee
}

// Totals is the derived price breakdown shown on cart and checkout.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	DeliveryCharge  float64 `json:"deliveryCharge"`
	Discount        float64 `json:"discount"`
	Total           float64 `json:"total"`
	ItemCount       int     `json:"itemCount"`
	AmountToFreeFee float64 `json:"amountToFreeDelivery,omitempty"`
	Coupon          string  `json:"coupon,omitempty"`
}

// Price computes the totals of c under p with an optional applied coupon.
// A coupon whose minimum is no longer met is ignored.
func (p PricingPolicy) Price(c Cart, coupon *Coupon) Totals {
	subtotal := round2(c.Subtotal())
	t := Totals{
		Subtotal:       subtotal,
		DeliveryCharge: p.DeliveryCharge(subtotal),
		ItemCount:      c.Count(),
	}
	if coupon != nil && coupon.Eligible(subtotal) {
		t.Coupon = coupon.Code
		if coupon.Type == CouponFreeDelivery {
			t.DeliveryCharge = 0
		}
		t.Discount = coupon.Discount(subtotal)
	}
	if t.DeliveryCharge > 0 {
		t.AmountToFreeFee = round2(p.FreeDeliveryThreshold - subtotal)
	}
	t.Total = round2(math.Max(0, subtotal+t.DeliveryCharge-t.Discount))
	return t
}

// CouponType is the kind of benefit a coupon grants.
type CouponType string

const (
	CouponFlat         CouponType = "flat"
	CouponPercentage   CouponType = "percentage"
	CouponFreeDelivery CouponType = "freeDelivery"
)

// Coupon is a discount code offered on the cart screen.
type Coupon struct {
	Code        string     `json:"code"`
	Type        CouponType `json:"type"`
	Value       float64    `json:"discount"`
	MinOrder    float64    `json:"minOrder"`
	MaxDiscount float64    `json:"maxDiscount,omitempty"`
	Description string     `json:"description"`
}

// DefaultCoupons is the catalogue shown on the cart screen.
var DefaultCoupons = []Coupon{
	{Code: "WELCOME50", Type: CouponFlat, Value: 50, MinOrder: 100, MaxDiscount: 50, Description: "Flat ₹50 off on orders above ₹100"},
	{Code: "FIRST10", Type: CouponPercentage, Value: 10, MinOrder: 200, MaxDiscount: 100, Description: "10% off on orders above ₹200 (max ₹100)"},
	{Code: "FREE199", Type: CouponFreeDelivery, MinOrder: 199, Description: "Free delivery on orders above ₹199"},
}

// FindCoupon looks a code up case-insensitively.
func FindCoupon(coupons []Coupon, code string) (Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Coupon{}, ErrCouponNotFound
	}
	for _, c := range coupons {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return Coupon{}, ErrCouponNotFound
}

// Eligible reports whether subtotal meets the coupon minimum.
func (c Coupon) Eligible(subtotal float64) bool {
	return subtotal > 0 && subtotal >= c.MinOrder
}

// Discount is the amount taken off subtotal, never more than subtotal.
func (c Coupon) Discount(subtotal float64) float64 {
	var d float64
	switch c.Type {
	case CouponFlat:
		d = c.Value
	case CouponPercentage:
		d = subtotal * c.Value / 100
		if c.MaxDiscount > 0 {
			d = math.Min(d, c.MaxDiscount)
		}
	}
	return round2(math.Min(d, subtotal))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
