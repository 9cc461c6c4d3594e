package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const adminTokenTTL = 15 * time.Minute

// GenerateAdminToken creates a short-lived HS256 token for the settings
// surface.
func GenerateAdminToken(secret []byte) (string, int64, error) {
	expirationTime := time.Now().Add(adminTokenTTL).Unix()
	claims := jwt.MapClaims{
		"sub": "admin",
		"exp": expirationTime,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", 0, err
	}
	return signedToken, expirationTime, nil
}

// ValidateAdminToken verifies the signature, expiry and subject of an admin
// token.
func ValidateAdminToken(tokenString string, secret []byte) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token")
	}
	if sub, _ := claims["sub"].(string); sub != "admin" {
		return errors.New("invalid token subject")
	}
	return nil
}
