package domain

import (
	"bytes"
	"encoding/json"
)

// ID holds a remote identifier. The grocery API emits numeric ids while the
// demo API and some admin screens use strings, so both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Identity is the display snapshot of the authenticated principal that is
// cached next to a credential. It is never consulted for authorization.
type Identity struct {
	ID      ID     `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Role    string `json:"role,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// Session is the (credential, identity) pair active for one namespace.
type Session struct {
	Namespace  Namespace `json:"namespace"`
	Credential string    `json:"-"`
	Identity   Identity  `json:"identity"`
}

// LoginResult is what the remote API answers to a successful login.
type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Signup is the registration payload for a new shopper account.
type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}
