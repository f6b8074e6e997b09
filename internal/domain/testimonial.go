package domain

import "time"

// Testimonial is a customer review shown on the storefront once approved.
type Testimonial struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Message    string    `json:"message"`
	Rating     int       `json:"rating"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}
