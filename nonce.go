package askengine

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NonceLifetime is how long a nonce verifies after it was issued.
const NonceLifetime = 24 * time.Hour

const nonceIssuer = "askengine"

type nonceClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Nonces issues and verifies action tokens that protect state-changing
// links against forgery. A token is bound to one action and one user.
type Nonces struct {
	secret []byte
	now    func() time.Time
}

// NewNonces creates a signer keyed with secret.
func NewNonces(secret string, now func() time.Time) *Nonces {
	if now == nil {
		now = time.Now
	}
	return &Nonces{secret: []byte(secret), now: now}
}

// EditPostAction is the nonce action that guards editing post id.
func EditPostAction(id int64) string {
	return "edit-post-" + strconv.FormatInt(id, 10)
}

// New returns a token for action issued to u.
func (n *Nonces) New(action string, u User) (string, error) {
	now := n.now()
	claims := nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    nonceIssuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(NonceLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(n.secret)
}

// Verify reports whether token was issued by n for action and u and has not expired.
func (n *Nonces) Verify(token, action string, u User) bool {
	if token == "" {
		return false
	}
	var claims nonceClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return n.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(nonceIssuer),
		jwt.WithSubject(strconv.FormatInt(u.ID, 10)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(n.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Action == action
}
