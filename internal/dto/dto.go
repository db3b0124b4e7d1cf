package dto

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the sanitized view returned to clients. The password hash never
// crosses this boundary.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	HasPaid bool   `json:"hasPaid"`
}

type AuthResponse struct {
	User *User `json:"user"`
}

type CheckoutResponse struct {
	CheckoutSessionID string `json:"checkoutSessionId"`
	CheckoutURL       string `json:"checkoutUrl"`
}

type CheckoutStatusResponse struct {
	Paid bool `json:"paid"`
}
