package domain

import (
	"strings"
	"time"
)

// Address is a delivery address in a user's address book. At most one address
// per user carries IsDefault.
type Address struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	PhoneNumber    string    `json:"phone_number"`
	Region         string    `json:"region"`
	PostalCode     string    `json:"postal_code"`
	Street         string    `json:"street"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks the required fields are non-blank. AdditionalInfo is the
// only optional field.
func (a *Address) Validate() []string {
	var missing []string
	required := map[string]string{
		"full_name":    a.FullName,
		"phone_number": a.PhoneNumber,
		"region":       a.Region,
		"postal_code":  a.PostalCode,
		"street":       a.Street,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
