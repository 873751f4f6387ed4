// Package token implements issuing and verification of session tokens.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim is the identity assertion embedded in a session token.
type Claim struct {
	UserID   uint
	Username string
}

// Token is an issued session token together with its echoed claim and expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpireTime  time.Time
	Claim       Claim
}

// Codec signs and verifies session tokens with a symmetric secret.
// It performs no store or network access; verification is pure computation
// plus a wall-clock read.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a Codec from the configured secret, signing algorithm name
// (HS256, HS384 or HS512) and token lifetime in minutes.
func NewCodec(secret, algorithm string, expireMinutes int) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not in the HMAC family", algorithm)
	}
	if expireMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %d minutes", expireMinutes)
	}
	return &Codec{
		secret: []byte(secret),
		method: method,
		ttl:    time.Duration(expireMinutes) * time.Minute,
		now:    time.Now,
	}, nil
}

// Issue signs a token carrying the claim and an expiry of now + TTL.
func (c *Codec) Issue(claim Claim) (*Token, error) {
	now := c.now()
	expire := now.Add(c.ttl)

	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(claim.UserID), 10),
		"username": claim.Username,
		"exp":      expire.Unix(),
		"iat":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpireTime:  expire,
		Claim:       claim,
	}, nil
}

// Verify parses and validates a token string, returning the embedded claim.
// It fails on a bad signature, a signing method other than the configured
// one, a malformed payload, or an elapsed expiry. The claim is trusted as-is;
// no account lookup happens here.
func (c *Codec) Verify(tokenString string) (*Claim, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token is missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token subject")
	}

	username, _ := claims["username"].(string)
	if username == "" {
		return nil, fmt.Errorf("token is missing username claim")
	}

	return &Claim{UserID: uint(userID), Username: username}, nil
}
