// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshTokenRequest carries the opaque refresh token for the refresh and
// logout endpoints. The token travels in the body, never as a header.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateUserRoleRequest defines the payload for updating a user's role.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin user"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenResponse is returned by the refresh endpoint. The pointer
// lets failure paths answer 401 with an explicit null access token.
type RefreshTokenResponse struct {
	AccessToken *string `json:"accessToken"`
}

// LogoutResponse acknowledges a revoked session.
type LogoutResponse struct {
	Message string `json:"message"`
}
