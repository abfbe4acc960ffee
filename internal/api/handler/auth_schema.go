package handler

import "strings"

// Presence of the fields is checked by the auth service so a missing field
// yields the single "All fields are required" message. The format tags only
// run on a complete request.
type registerRequest struct {
	Name     string `json:"name"     validate:"max=100"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

func (r *registerRequest) complete() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.Email) != "" &&
		r.Password != "" &&
		strings.TrimSpace(r.Role) != ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}
