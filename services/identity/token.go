package identitysvc

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
)

var (
	// errors
	ErrInvalidToken = errors.New("invalid identity token")
	ErrNoEmail      = errors.New("identity token carries no email")
)

// Claims are the ID-token claims of the external identity provider.
type Claims struct {
	jwt.StandardClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// TokenParser verifies HMAC signed ID tokens and turns them into identity events.
type TokenParser struct {
	method  jwt.SigningMethod
	key     []byte
	issuer  string
	nowFunc func() time.Time
}

func NewTokenParser(conf core.IdentityConfig) *TokenParser {
	return &TokenParser{
		method:  jwt.SigningMethodHS256,
		key:     []byte(conf.SigningKey),
		issuer:  conf.Issuer,
		nowFunc: time.Now,
	}
}

// Issue signs a token for ev valid for ttl.
func (p *TokenParser) Issue(ev core.IdentityEvent, ttl time.Duration) (string, error) {
	now := p.nowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    p.issuer,
			Subject:   ev.ExternalID,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:   ev.Email,
		Name:    ev.DisplayName,
		Picture: ev.PhotoURL,
	}
	ss, err := jwt.NewWithClaims(p.method, claims).SignedString(p.key)
	if err != nil {
		return "", errors.Wrap(err, "signing identity token")
	}
	return ss, nil
}

// Parse verifies the signature, expiry and issuer of token.
func (p *TokenParser) Parse(token string) (core.IdentityEvent, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != p.method.Alg() {
			return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return p.key, nil
	})
	if err != nil || !parsed.Valid {
		return core.IdentityEvent{}, errors.Wrap(ErrInvalidToken, errString(err))
	}
	if !claims.VerifyIssuer(p.issuer, true) {
		return core.IdentityEvent{}, errors.Wrap(ErrInvalidToken, "unexpected issuer")
	}
	if claims.Email == "" {
		return core.IdentityEvent{}, ErrNoEmail
	}
	return core.IdentityEvent{
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		ExternalID:  claims.Subject,
	}, nil
}

func errString(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
