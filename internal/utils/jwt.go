package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/declanlscott/printdesk-sub002/models"
	"github.com/golang-jwt/jwt/v5"
)

// PrincipalClaims is the claim set carried by access tokens. The subject
// holds the user id; tenant and role ride in private claims.
type PrincipalClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tid"`
	Role     string `json:"role"`
}

// GenerateJWTToken creates a signed HMAC-SHA256 access token for the given
// principal.
//
// The token includes the standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the user ID
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//
// plus the private "tid" and "role" claims.
func GenerateJWTToken(issuer string, principal models.Principal, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	claims := &PrincipalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: principal.TenantID,
		Role:     principal.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return tokenString, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and extracts
// the principal it identifies.
//
// Validation includes:
//   - Signature verification using the provided sign key
//   - Issuer (iss) claim check against the provided tokenIssuer
//   - Expiration (exp) claim check
//   - Presence of the subject and tenant claims
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Principal, error) {
	var claims PrincipalClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if claims.Subject == "" {
		return models.Principal{}, errors.New("empty subject error")
	}
	if claims.TenantID == "" {
		return models.Principal{}, errors.New("empty tenant claim error")
	}

	return models.Principal{
		UserID:   claims.Subject,
		TenantID: claims.TenantID,
		Role:     claims.Role,
	}, nil
}

// ParseBearerToken extracts the bearer token string from a raw
// "Authorization" HTTP header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
