package utils // package utils provides helpers for password hashing and session tokens

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned when a session token fails verification for any
// reason: bad signature, unexpected algorithm, malformed payload or a missing
// subject claim.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT whose only claim of substance
// is the account id in `sub`.  The token carries no expiry claim; the session
// lifetime is enforced through the cookie the token travels in.  `iat` is set
// so identical logins still produce distinct token strings.
func NewSessionToken(secret, userID string) (string, error) {
    claims := jwt.MapClaims{
        "sub": userID,
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature of a session token against the
// server secret and returns the account id stored in the subject claim.
// Tampered, malformed or differently signed tokens all come back as
// ErrInvalidToken.
func ParseSessionToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrInvalidToken
    }
    sub, ok := claims["sub"].(string)
    if !ok || sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}
