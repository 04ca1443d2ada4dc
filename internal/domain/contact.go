package domain

import "strconv"

// CompanyRef is the company a contact works for.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Contact is a person an opportunity can be attached to.
type Contact struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name,omitempty"`
	Company  *CompanyRef `json:"company,omitempty"`
	PhotoURL *string     `json:"photoUrl,omitempty"`
}

// IsStub reports whether only the id is known, as in `contact: {id}` responses.
func (c Contact) IsStub() bool {
	return c.Name == ""
}

// DisplayName falls back to the id so the board never shows an empty label.
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Contact #" + strconv.FormatInt(c.ID, 10)
}

// CompanyName is empty when the contact has no company.
func (c Contact) CompanyName() string {
	if c.Company == nil {
		return ""
	}
	return c.Company.Name
}
