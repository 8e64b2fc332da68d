package models

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=256"`
	Email    string `json:"email" validate:"required,max=256,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RequestMeta describes the client a request came from
type RequestMeta struct {
	RequestID  string
	RemoteAddr string
	UserAgent  string
}

// AuthResult is returned by successful registrations and logins
type AuthResult struct {
	AccessToken string
	User        *User
}

// RegisterResponse is the body of a successful registration
type RegisterResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	Data        UserResponse `json:"data"`
}

// MeResponse is the body of the identity lookup
type MeResponse struct {
	Data UserResponse `json:"data"`
}

// ErrorResponse is the body of every non-validation failure
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of a failed validation
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}
