package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OrderStatus represents the lifecycle state of an order on the remote API.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "PLACED"
	OrderPaid           OrderStatus = "PAID"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// validTransitions defines the order state machine the admin panel enforces
// before asking the remote API for a status change.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:         {OrderPaid, OrderConfirmed, OrderCancelled},
	OrderPaid:           {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderOutForDelivery, OrderCancelled},
	OrderOutForDelivery: {OrderDelivered},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// ParseOrderStatus normalizes the casing the remote API uses inconsistently.
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderPaid, OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether a shopper may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderCancelled)
}

// PaymentMethod is a label only; no payment is processed here.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "COD"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "CARD"
)

// ParsePaymentMethod normalizes m; an empty method means cash on delivery.
func ParsePaymentMethod(m string) (PaymentMethod, error) {
	switch p := PaymentMethod(strings.ToUpper(strings.TrimSpace(m))); p {
	case "":
		return PaymentCOD, nil
	case PaymentCOD, PaymentUPI, PaymentCard:
		return p, nil
	}
	return "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, m)
}

// DeliveryAddress is the address an order is shipped to.
type DeliveryAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode"`
}

// Complete reports whether the address has every field a courier needs.
func (a DeliveryAddress) Complete() bool {
	for _, f := range []string{a.Name, a.Phone, a.Address, a.City, a.Pincode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// String renders the single-line form the remote API stores on the order.
func (a DeliveryAddress) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Name, a.Address, a.City, a.State, a.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, ", ")
	if phone := strings.TrimSpace(a.Phone); phone != "" {
		line += " (" + phone + ")"
	}
	return line
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ID          ID      `json:"id,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
}

// Order is the shopper-facing view of a remote order.
type Order struct {
	ID              ID          `json:"id"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"totalAmount"`
	OrderDate       string      `json:"orderDate,omitempty"`
	DeliveryAddress string      `json:"deliveryAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	Items           []OrderItem `json:"orderItems,omitempty"`
}

// Delivered reports whether the order reached the terminal delivered state.
func (o Order) Delivered() bool {
	return ParseOrderStatus(string(o.Status)) == OrderDelivered
}

// PlaceOrder is the payload sent to the remote API to place an order.
type PlaceOrder struct {
	DeliveryAddress string        `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	CouponCode      string        `json:"couponCode,omitempty"`
	TotalAmount     float64       `json:"totalAmount"`
}
