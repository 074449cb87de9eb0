package models

import "strings"

// Customer represents a buyer. Name is unique within an account, ignoring case.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// CustomerInput is used for creating/updating customers.
type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (c *CustomerInput) Validate() string {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return "name is required"
	}
	return ""
}

// Customer returns the customer described by the input.
func (c CustomerInput) Customer(id string) Customer {
	return Customer{ID: id, Name: c.Name, Phone: c.Phone}
}
