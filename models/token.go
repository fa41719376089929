package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT bearer token used to authenticate sync requests.
//
// It embeds [jwt.Token] for low-level operations and [jwt.RegisteredClaims]
// for standard claim access. SignedString holds the compact serialized form
// ready to be sent in an Authorization header; Account caches the parsed
// "sub" claim so handlers do not re-parse it.
type Token struct {
	// Token is the underlying JWT used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides the standard claim set (sub, exp, iat, iss).
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// Account is the account login extracted from the "sub" claim.
	Account string `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// Credentials is the payload of the login endpoint.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}
