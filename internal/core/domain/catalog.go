package domain

// Product is a sellable catalogue entry on the remote API.
type Product struct {
	ID          ID      `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Category    string  `json:"category,omitempty"`
	Stock       int64   `json:"stock"`
	Active      *bool   `json:"active,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool { return p.Stock > 0 }

// Category groups products on the storefront.
type Category struct {
	ID       ID     `json:"id,omitempty"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalUsers    int64         `json:"totalUsers"`
	TotalOrders   int64         `json:"totalOrders"`
	TotalProducts int64         `json:"totalProducts"`
	TotalRevenue  float64       `json:"totalRevenue"`
	RecentOrders  []RecentOrder `json:"recentOrders"`
}

// RecentOrder is one row of the dashboard's latest-orders table.
type RecentOrder struct {
	OrderID   ID      `json:"orderId"`
	UserEmail string  `json:"userEmail"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Customer is a user account as listed in the admin panel.
type Customer struct {
	ID     ID      `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Status string  `json:"status"`
	Orders int64   `json:"orders"`
	Spent  float64 `json:"spent"`
}

// Customer account states the admin can toggle.
const (
	CustomerActive  = "active"
	CustomerBlocked = "blocked"
)
