package jwt

import jwtv5 "github.com/golang-jwt/jwt/v5"

const (
	TypeSession = "session"
	TypeAdmin   = "admin"
)

// SessionClaims son los claims del session token del usuario final.
type SessionClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Type   string `json:"typ"`
	jwtv5.RegisteredClaims
}

// AdminClaims son los claims del token de la superficie de admin.
type AdminClaims struct {
	Type string `json:"typ"`
	jwtv5.RegisteredClaims
}
