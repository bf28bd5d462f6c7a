package demoapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshcart/storefront/internal/core/domain"
)

var (
	errNotFound    = errors.New("not found")
	errExists      = errors.New("already exists")
	errOutOfStock  = errors.New("not enough stock")
	errEmptyCart   = errors.New("cart is empty")
	errNotAllowed  = errors.New("status change not allowed")
	errBadPassword = errors.New("invalid email or password")
)

// Seeded accounts.
const (
	DemoUserEmail     = "user@freshcart.local"
	DemoUserPassword  = "user123"
	DemoUserPhone     = "9876543210"
	DemoAdminEmail    = "admin@freshcart.local"
	DemoAdminPassword = "admin123"
)

type account struct {
	identity domain.Identity
	hash     []byte
	status   string
}

type placedOrder struct {
	order  domain.Order
	userID string
	email  string
	at     time.Time
}

// Store is the in-memory state of the demo API.
type Store struct {
	mu         sync.RWMutex
	accounts   []*account
	products   []domain.Product
	categories []domain.Category
	carts      map[string][]domain.CartItem
	orders     []*placedOrder
	addresses  map[string][]domain.Address
	otps       map[string]string
	cost       int
}

// NewStore returns a store seeded with one shopper, one administrator and a
// small catalogue. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewStore(cost int) (*Store, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	s := &Store{
		carts:     make(map[string][]domain.CartItem),
		addresses: make(map[string][]domain.Address),
		otps:      make(map[string]string),
		cost:      cost,
	}

	seed := []struct {
		name, email, phone, password, role string
	}{
		{"Demo User", DemoUserEmail, DemoUserPhone, DemoUserPassword, domain.RoleUser},
		{"Store Admin", DemoAdminEmail, "", DemoAdminPassword, domain.RoleAdmin},
	}
	for _, u := range seed {
		if _, err := s.addAccount(domain.Identity{Name: u.name, Email: u.email, Phone: u.phone, Role: u.role}, u.password); err != nil {
			return nil, fmt.Errorf("seed %s: %w", u.email, err)
		}
	}

	for i, name := range []string{"Fruits & Vegetables", "Dairy & Bakery", "Beverages", "Snacks"} {
		s.categories = append(s.categories, domain.Category{ID: domain.ID(fmt.Sprint(i + 1)), Name: name})
	}
	for i, p := range []domain.Product{
		{Name: "Fresh Red Tomatoes", Category: "Fruits & Vegetables", Price: 45, Stock: 50},
		{Name: "Bananas (1 dozen)", Category: "Fruits & Vegetables", Price: 60, Stock: 40},
		{Name: "Full Cream Milk 1L", Category: "Dairy & Bakery", Price: 68, Stock: 30},
		{Name: "Whole Wheat Bread", Category: "Dairy & Bakery", Price: 45, Stock: 25},
		{Name: "Orange Juice 1L", Category: "Beverages", Price: 120, Stock: 20},
		{Name: "Green Tea (25 bags)", Category: "Beverages", Price: 150, Stock: 15},
		{Name: "Salted Potato Chips", Category: "Snacks", Price: 20, Stock: 100},
		{Name: "Roasted Almonds 200g", Category: "Snacks", Price: 260, Stock: 12},
	} {
		p.ID = domain.ID(fmt.Sprint(i + 1))
		p.Status = "ACTIVE"
		s.products = append(s.products, p)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func (s *Store) addAccount(id domain.Identity, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail(id.Email) != nil {
		return nil, errExists
	}
	id.ID = domain.ID(uuid.NewString())
	a := &account{identity: id, hash: hash, status: domain.CustomerActive}
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) byEmail(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.identity.Email, email) {
			return a
		}
	}
	return nil
}

func (s *Store) byID(id string) *account {
	for _, a := range s.accounts {
		if string(a.identity.ID) == id {
			return a
		}
	}
	return nil
}

// Authenticate checks email and password.
func (s *Store) Authenticate(email, password string) (domain.Identity, string, error) {
	s.mu.RLock()
	a := s.byEmail(strings.TrimSpace(email))
	s.mu.RUnlock()
	if a == nil {
		return domain.Identity{}, "", errBadPassword
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return domain.Identity{}, "", errBadPassword
	}
	return a.identity, a.status, nil
}

// Register creates a shopper account.
func (s *Store) Register(in domain.Signup) (domain.Identity, error) {
	a, err := s.addAccount(domain.Identity{
		Name:  in.Name,
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: in.Phone,
		Role:  domain.RoleUser,
	}, in.Password)
	if err != nil {
		return domain.Identity{}, err
	}
	return a.identity, nil
}

// Account returns the identity and status of a user id.
func (s *Store) Account(id string) (domain.Identity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.byID(id)
	if a == nil {
		return domain.Identity{}, "", errNotFound
	}
	return a.identity, a.status, nil
}

// UpdateProfile replaces the editable profile fields of id.
func (s *Store) UpdateProfile(id string, in domain.Identity) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byID(id)
	if a == nil {
		return domain.Identity{}, errNotFound
	}
	a.identity.Name = in.Name
	a.identity.Phone = in.Phone
	a.identity.Address = in.Address
	a.identity.City = in.City
	a.identity.State = in.State
	a.identity.Pincode = in.Pincode
	return a.identity, nil
}

// SetStatus blocks or unblocks a shopper.
func (s *Store) SetStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byID(id)
	if a == nil || a.identity.Role != domain.RoleUser {
		return errNotFound
	}
	a.status = status
	return nil
}

// IssueOTP stores code for phone.
func (s *Store) IssueOTP(phone, code string) {
	s.mu.Lock()
	s.otps[phone] = code
	s.mu.Unlock()
}

// RedeemOTP consumes the code of phone and returns the shopper owning the
// phone, creating one on first login.
func (s *Store) RedeemOTP(phone, code string) (domain.Identity, error) {
	s.mu.Lock()
	want, ok := s.otps[phone]
	if !ok || want != code {
		s.mu.Unlock()
		return domain.Identity{}, errBadPassword
	}
	delete(s.otps, phone)
	for _, a := range s.accounts {
		if a.identity.Phone == phone && a.identity.Role == domain.RoleUser {
			s.mu.Unlock()
			return a.identity, nil
		}
	}
	s.mu.Unlock()

	a, err := s.addAccount(domain.Identity{Phone: phone, Email: phone + "@phone.freshcart.local", Role: domain.RoleUser}, uuid.NewString())
	if err != nil {
		return domain.Identity{}, err
	}
	return a.identity, nil
}

// Customers lists shopper accounts with their order totals.
func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Customer{}
	for _, a := range s.accounts {
		if a.identity.Role != domain.RoleUser {
			continue
		}
		c := domain.Customer{ID: a.identity.ID, Name: a.identity.Name, Email: a.identity.Email, Status: a.status}
		for _, o := range s.orders {
			if o.userID == string(a.identity.ID) {
				c.Orders++
				if o.order.Status != domain.OrderCancelled {
					c.Spent += o.order.TotalAmount
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// ---------------------------------------------------------------------------
// Catalogue
// ---------------------------------------------------------------------------

// Products lists active products, filtered by category and name when set.
func (s *Store) Products(category, query string, all bool) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(query)
	out := []domain.Product{}
	for _, p := range s.products {
		if !all && p.Active != nil && !*p.Active {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) productIndex(id string) int {
	for i, p := range s.products {
		if string(p.ID) == id {
			return i
		}
	}
	return -1
}

// Product returns one product.
func (s *Store) Product(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productIndex(id)
	if i < 0 {
		return domain.Product{}, errNotFound
	}
	return s.products[i], nil
}

// SaveProduct creates p when id is empty, else replaces product id.
func (s *Store) SaveProduct(id string, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		p.ID = domain.ID(uuid.NewString())
		s.products = append(s.products, p)
		return p, nil
	}
	i := s.productIndex(id)
	if i < 0 {
		return domain.Product{}, errNotFound
	}
	p.ID = s.products[i].ID
	s.products[i] = p
	return p, nil
}

// DeleteProduct removes product id.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(id)
	if i < 0 {
		return errNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

// Categories lists categories.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...)
}

// SaveCategory creates c when id is empty, else replaces category id.
func (s *Store) SaveCategory(id string, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		c.ID = domain.ID(uuid.NewString())
		s.categories = append(s.categories, c)
		return c, nil
	}
	for i := range s.categories {
		if string(s.categories[i].ID) == id {
			c.ID = s.categories[i].ID
			s.categories[i] = c
			return c, nil
		}
	}
	return domain.Category{}, errNotFound
}

// DeleteCategory removes category id.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if string(s.categories[i].ID) == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

// Cart returns the cart lines of userID.
func (s *Store) Cart(userID string) []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartItem{}, s.carts[userID]...)
}

// AddToCart adds quantity of a product, merging with an existing line.
func (s *Store) AddToCart(userID, productID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(productID)
	if i < 0 {
		return errNotFound
	}
	p := s.products[i]

	lines := s.carts[userID]
	for j := range lines {
		if string(lines[j].ProductID) == productID {
			if lines[j].Quantity+quantity > p.Stock {
				return errOutOfStock
			}
			lines[j].Quantity += quantity
			return nil
		}
	}
	if quantity > p.Stock {
		return errOutOfStock
	}
	s.carts[userID] = append(lines, domain.CartItem{
		ID:        domain.ID(uuid.NewString()),
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
		Quantity:  quantity,
		Stock:     p.Stock,
	})
	return nil
}

// UpdateCartLine sets the quantity of one line.
func (s *Store) UpdateCartLine(userID, itemID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for j := range lines {
		if string(lines[j].ID) == itemID {
			if quantity > lines[j].Stock {
				return errOutOfStock
			}
			lines[j].Quantity = quantity
			return nil
		}
	}
	return errNotFound
}

// RemoveCartLine drops one line.
func (s *Store) RemoveCartLine(userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for j := range lines {
		if string(lines[j].ID) == itemID {
			s.carts[userID] = append(lines[:j], lines[j+1:]...)
			return nil
		}
	}
	return errNotFound
}

// ClearCart empties the cart of userID.
func (s *Store) ClearCart(userID string) {
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// PlaceOrder turns the cart of userID into an order and empties the cart.
func (s *Store) PlaceOrder(userID string, in domain.PlaceOrder, now time.Time) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	if len(lines) == 0 {
		return domain.Order{}, errEmptyCart
	}
	a := s.byID(userID)
	if a == nil {
		return domain.Order{}, errNotFound
	}

	o := domain.Order{
		ID:              domain.ID(uuid.NewString()),
		Status:          domain.OrderPlaced,
		TotalAmount:     in.TotalAmount,
		OrderDate:       now.UTC().Format(time.RFC3339),
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   string(in.PaymentMethod),
	}
	for _, l := range lines {
		o.Items = append(o.Items, domain.OrderItem{
			ID:          domain.ID(uuid.NewString()),
			ProductName: l.Name,
			ImageURL:    l.ImageURL,
			Price:       l.Price,
			Quantity:    l.Quantity,
		})
		if i := s.productIndex(string(l.ProductID)); i >= 0 {
			s.products[i].Stock -= l.Quantity
		}
	}
	s.orders = append(s.orders, &placedOrder{order: o, userID: userID, email: a.identity.Email, at: now})
	delete(s.carts, userID)
	return o, nil
}

func (s *Store) findOrder(id, userID string) *placedOrder {
	for _, o := range s.orders {
		if string(o.order.ID) == id && (userID == "" || o.userID == userID) {
			return o
		}
	}
	return nil
}

// Orders lists the orders of userID, or every order when userID is empty,
// newest first.
func (s *Store) Orders(userID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if userID == "" || s.orders[i].userID == userID {
			out = append(out, s.orders[i].order)
		}
	}
	return out
}

// Order returns one order. userID restricts the lookup to its owner.
func (s *Store) Order(id, userID string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := s.findOrder(id, userID)
	if o == nil {
		return domain.Order{}, errNotFound
	}
	return o.order, nil
}

// SetOrderStatus moves an order along the status machine.
func (s *Store) SetOrderStatus(id, userID string, next domain.OrderStatus) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findOrder(id, userID)
	if o == nil {
		return domain.Order{}, errNotFound
	}
	if !o.order.Status.CanTransitionTo(next) {
		return domain.Order{}, errNotAllowed
	}
	o.order.Status = next
	return o.order, nil
}

// Dashboard summarises the store.
func (s *Store) Dashboard() domain.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := domain.Dashboard{TotalProducts: int64(len(s.products)), TotalOrders: int64(len(s.orders)), RecentOrders: []domain.RecentOrder{}}
	for _, a := range s.accounts {
		if a.identity.Role == domain.RoleUser {
			d.TotalUsers++
		}
	}

	recent := append([]*placedOrder{}, s.orders...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].at.After(recent[j].at) })
	for i, o := range recent {
		if o.order.Status != domain.OrderCancelled {
			d.TotalRevenue += o.order.TotalAmount
		}
		if i < 5 {
			d.RecentOrders = append(d.RecentOrders, domain.RecentOrder{
				OrderID:   o.order.ID,
				UserEmail: o.email,
				Amount:    o.order.TotalAmount,
				Status:    string(o.order.Status),
				CreatedAt: o.order.OrderDate,
			})
		}
	}
	return d
}

// ---------------------------------------------------------------------------
// Addresses
// ---------------------------------------------------------------------------

// Addresses lists the saved addresses of userID.
func (s *Store) Addresses(userID string) []domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Address{}, s.addresses[userID]...)
}

// AddAddress saves a for userID. A default address demotes the others.
func (s *Store) AddAddress(userID string, a domain.Address) domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = domain.ID(uuid.NewString())
	list := s.addresses[userID]
	if len(list) == 0 {
		a.IsDefault = true
	}
	if a.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	s.addresses[userID] = append(list, a)
	return a
}

// DeleteAddress removes one saved address.
func (s *Store) DeleteAddress(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if string(list[i].ID) == id {
			s.addresses[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return errNotFound
}
