package model

import "time"

// Team has an independent lifecycle: assignments reference teams, they never
// own them.
type Team struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Color     string    `json:"color"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Team) Validate() error {
	if t.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if t.CompanyID == 0 {
		return NewValidationError("company_id", "must reference a company")
	}
	return nil
}
