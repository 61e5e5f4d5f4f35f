package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/partyup/partyup/internal/dependencies/clock"
	"github.com/partyup/partyup/internal/model"
)

// ErrInvalidToken is the single failure mode of Verify. Malformed tokens,
// bad signatures and expired tokens are deliberately indistinguishable to
// callers so that token validity cannot be probed.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTTL is how long an invite link stays valid unless configured otherwise
const DefaultTTL = 10 * time.Minute

// joinClaims is the signed payload of an invite token: the game being
// joined plus the registered expiry.
type joinClaims struct {
	JoinGame string `json:"join_game"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed, time-bounded join tokens. The signing
// secret is injected at construction and never read from ambient state.
type Codec struct {
	secret []byte
	clock  clock.Clock
}

// NewCodec creates a Codec signing with the given secret
func NewCodec(secret []byte, clk clock.Clock) *Codec {
	return &Codec{
		secret: secret,
		clock:  clk,
	}
}

// Issue creates a signed join token for the given game, expiring after ttl.
// A non-positive ttl produces an already-expired token.
func (c *Codec) Issue(gameID model.GameID, ttl time.Duration) (string, error) {
	now := c.clock.Now()
	claims := &joinClaims{
		JoinGame: string(gameID),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify checks a join token and returns the game it grants access to.
// Any failure, for any reason, is ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (model.GameID, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &joinClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.clock.Now))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := tok.Claims.(*joinClaims)
	if !ok || !tok.Valid || claims.JoinGame == "" {
		return "", ErrInvalidToken
	}

	return model.GameID(claims.JoinGame), nil
}
