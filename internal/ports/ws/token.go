package ws

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/samaschen/timebomb-boardgame/internal/domain"
)

// TokenIssuer signs and verifies resume tokens. A token binds a room
// code, player identity, and name so a refreshed client can prove who
// it was without the server trusting client-stored plain values. The
// engine's own identity and name checks still apply on rejoin.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type resumeClaims struct {
	Room   string `json:"room"`
	Player int    `json:"player"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

var errBadToken = errors.New("invalid resume token")

// NewTokenIssuer creates an issuer with the given HMAC secret and
// token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a resume token for one player in one room.
func (t *TokenIssuer) Issue(room string, player domain.PlayerID, name string) (string, error) {
	now := t.now()
	claims := resumeClaims{
		Room:   room,
		Player: int(player),
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature and expiry and returns the bound room,
// identity, and name.
func (t *TokenIssuer) Verify(raw string) (room string, player domain.PlayerID, name string, err error) {
	var claims resumeClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return "", 0, "", errBadToken
	}
	return claims.Room, domain.PlayerID(claims.Player), claims.Name, nil
}
