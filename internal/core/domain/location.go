package domain

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location is the delivery location the shopper picked in the header.
type Location struct {
	Label       string      `json:"label"`
	Pincode     string      `json:"pincode,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// Address is a saved delivery address held by the remote API.
type Address struct {
	ID        ID     `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Delivery converts a saved address into the form an order carries.
func (a Address) Delivery() DeliveryAddress {
	return DeliveryAddress{
		Name:    a.Name,
		Phone:   a.Phone,
		Address: a.Address,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
	}
}
