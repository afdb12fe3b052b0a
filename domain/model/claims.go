package model

import "github.com/golang-jwt/jwt"

// ServiceClaims identifies an internal operator token for the stats and
// diagnostics endpoints.
type ServiceClaims struct {
	UserName string `json:"userName"`
	jwt.StandardClaims
}
