package identitypb

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Salt        []byte `json:"salt"`
	Verifier    []byte `json:"verifier"`
}

type RegisterResponse struct {
	User *User `json:"user,omitempty"`
}

type GetSaltRequest struct {
	Email string `json:"email"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Verifier []byte `json:"verifier"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	User *User `json:"user,omitempty"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Profile struct {
	UID         string    `json:"uid"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	FarmID      string    `json:"farm_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateProfileRequest struct {
	Profile *Profile `json:"profile,omitempty"`
}

type CreateProfileResponse struct {
	Profile *Profile `json:"profile,omitempty"`
}

type GetProfileRequest struct {
	UID string `json:"uid"`
}

type GetProfileResponse struct {
	Profile *Profile `json:"profile,omitempty"`
}

type ProfileImageUploadURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
}

type ProfileImageUploadURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
