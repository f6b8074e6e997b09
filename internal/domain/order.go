package domain

import "time"

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusPacked    = "packed"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ShippingFee is the flat delivery fee added to every order total.
const ShippingFee int64 = 120

// Order is an immutable record of a checkout. Customer and address fields are
// snapshots taken at placement time; later address-book edits do not affect
// past orders.
type Order struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Status         string       `json:"status"`
	Items          []OrderItem  `json:"items"`
	Subtotal       int64        `json:"subtotal"`
	ShippingFee    int64        `json:"shipping_fee"`
	Total          int64        `json:"total"`
	CustomerName   string       `json:"customer_name"`
	CustomerPhone  string       `json:"customer_phone"`
	Address        OrderAddress `json:"address"`
	CancelReason   string       `json:"cancel_reason,omitempty"`
	IdempotencyKey string       `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OrderItem is a purchased line snapshotted from the cart.
type OrderItem struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Size       string `json:"size"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"total_price"`
	ImageURL   string `json:"image_url,omitempty"`
}

// OrderAddress is the delivery address snapshot stored with the order.
type OrderAddress struct {
	Region         string `json:"region"`
	PostalCode     string `json:"postal_code"`
	Street         string `json:"street"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// ValidOrderStatuses returns all valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusPacked,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// IsValidOrderStatus checks if a status string is valid.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid. Cancellation
// is only reachable before the order ships.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:   {OrderStatusPacked, OrderStatusCancelled},
		OrderStatusPacked:    {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusCompleted},
		OrderStatusCompleted: {},
		OrderStatusCancelled: {},
	}
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status string
	Gender string
}
