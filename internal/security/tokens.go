package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when an authorization header or token is missing, malformed, or invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when an HMAC provider is built without a secret.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

const bearerScheme = "bearer"

// reservedClaims are always set by the provider and never taken from the caller's payload.
var reservedClaims = []string{"iss", "aud", "iat", "exp", "nbf", "jti"}

// IdentityClaim is the verified identity extracted from a token.
type IdentityClaim struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenProvider issues and verifies identity tokens. Tokens are signed with HS256 (shared secret)
// or RS256/ES256 (key pair). It is stateless: nothing is persisted on issue or verify.
type TokenProvider struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

// NewHMACTokenProvider returns a TokenProvider that signs with the shared secret using HS256.
func NewHMACTokenProvider(secret []byte, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &TokenProvider{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// NewKeyPairTokenProvider returns a TokenProvider that signs with privateKey (RS256 or ES256)
// and verifies with publicKey.
func NewKeyPairTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	if privateKey == nil || publicKey == nil {
		return nil, ErrInvalidKey
	}
	method := signingMethodFor(privateKey.Public())
	if method == nil || method != signingMethodFor(publicKey) {
		return nil, ErrInvalidKey
	}
	return &TokenProvider{
		method:    method,
		signKey:   privateKey,
		verifyKey: publicKey,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// TTL returns the validity window of issued tokens.
func (p *TokenProvider) TTL() time.Duration {
	return p.ttl
}

// Issue signs the caller-supplied identity payload. Payload keys are copied verbatim except the
// registered claims (iss, aud, iat, exp, nbf, jti), which the provider always sets itself.
// Returns the token and its expiration time.
func (p *TokenProvider) Issue(payload map[string]any) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	for _, k := range reservedClaims {
		delete(claims, k)
	}
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims["iss"] = p.issuer
	claims["aud"] = []string{p.audience}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(expiresAt)
	claims["jti"] = jti

	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates an Authorization header value of the form "Bearer <token>" and returns the
// identity it asserts. Any failure (absent, not two parts, wrong scheme, undecodable, bad
// signature, expired, wrong issuer or audience) returns ErrInvalidToken.
func (p *TokenProvider) Verify(rawHeader string) (*IdentityClaim, error) {
	token, ok := extractBearer(rawHeader)
	if !ok {
		return nil, ErrInvalidToken
	}
	return p.parse(token)
}

func (p *TokenProvider) parse(tokenString string) (*IdentityClaim, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.verifyKey, nil
	},
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	out := &IdentityClaim{Email: NormalizeEmail(email)}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// NormalizeEmail lowercases and trims an email so identity comparisons are exact string matches.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// extractBearer splits a "scheme token" header. It requires exactly two parts and the Bearer scheme.
func extractBearer(rawHeader string) (string, bool) {
	parts := strings.Fields(rawHeader)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}
	return parts[1], true
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
