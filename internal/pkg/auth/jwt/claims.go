package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to authenticated users.
type Payload struct {
	// StandardClaims embeds the standard JWT fields (Exp, Iat, Iss) used for
	// token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's identifier. It is the only identity fact the server
	// trusts from a presented token.
	ID string `json:"id"`
}
