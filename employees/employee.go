package employees

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-employee-console/internal/utils"
)

// AdminRef points at the administrator that created or last modified a record
type AdminRef struct {
	ID int64 `json:"id"`
}

type Employee struct {
	ID          int64     `json:"id,omitempty"`
	FirstName   string    `json:"firstName" validate:"required,max=50"`
	LastName    string    `json:"lastName" validate:"required,max=50"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password,omitempty" validate:"omitempty,min=3,max=50"`
	Department  string    `json:"department,omitempty" validate:"max=100"`
	Designation string    `json:"designation,omitempty" validate:"max=100"`
	PhoneNumber string    `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	Address     string    `json:"address,omitempty" validate:"max=200"`
	CreatedBy   *AdminRef `json:"createdBy,omitempty"`
	ModifiedBy  *AdminRef `json:"modifiedBy,omitempty"`
}

// FullName is the display name used by the list view
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Page is one page of the employee listing
type Page struct {
	Content    []Employee `json:"content"`
	TotalPages int        `json:"totalPages"`
	Number     int        `json:"number"`
}

// HasPrevious reports whether there is a page before this one
func (p Page) HasPrevious() bool {
	return p.Number > 0
}

// HasNext reports whether there is a page after this one
func (p Page) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// LoginResult is what a successful login hands back. The API may send
// userId as a number or a string; it is kept in string form.
type LoginResult struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message,omitempty"`
}

func (r *LoginResult) UnmarshalJSON(data []byte) error {
	type plain LoginResult
	aux := struct {
		*plain
		UserID json.RawMessage `json:"userId"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.UserID = ""
	if len(aux.UserID) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(aux.UserID))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode userId: %w", err)
	}
	if raw == nil {
		return nil
	}
	id, ok := utils.ToIDString(raw)
	if !ok {
		return fmt.Errorf("userId must be a string or a number, got %s", aux.UserID)
	}
	r.UserID = id
	return nil
}
