package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Subject is the account a token is issued for. Refresh tokens only carry
// the user id; role and email are read again when they are exchanged.
type Subject struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	Kind   Kind      `json:"token_type"`

	jwtlib.RegisteredClaims
}

type Pair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

type Service interface {
	IssuePair(sub Subject) (Pair, error)
	ParseAccess(token string) (Claims, error)
	ParseRefresh(token string) (Claims, error)
}

type Option func(*HMACService)

// WithIssuer stamps tokens with iss and rejects tokens from other issuers.
func WithIssuer(issuer string) Option {
	return func(s *HMACService) { s.issuer = issuer }
}

// WithClock replaces the time source used to stamp and check tokens.
func WithClock(now func() time.Time) Option {
	return func(s *HMACService) { s.now = now }
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// HMACService signs HS256 tokens. Access and refresh tokens use separate
// secrets so one can never be replayed as the other.
type HMACService struct {
	keys   map[Kind]signingKey
	issuer string
	now    func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *HMACService {
	s := &HMACService{
		keys: map[Kind]signingKey{
			KindAccess:  {secret: []byte(accessSecret), ttl: accessTTL},
			KindRefresh: {secret: []byte(refreshSecret), ttl: refreshTTL},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HMACService) IssuePair(sub Subject) (Pair, error) {
	if sub.UserID == uuid.Nil {
		return Pair{}, ErrTokenInvalid
	}
	now := s.now().UTC()

	access, exp, err := s.sign(KindAccess, sub, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, _, err := s.sign(KindRefresh, Subject{UserID: sub.UserID}, now)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, AccessExpiresAt: exp}, nil
}

func (s *HMACService) ParseAccess(token string) (Claims, error) {
	return s.parse(KindAccess, token)
}

func (s *HMACService) ParseRefresh(token string) (Claims, error) {
	return s.parse(KindRefresh, token)
}

func (s *HMACService) sign(kind Kind, sub Subject, now time.Time) (string, time.Time, error) {
	k := s.keys[kind]
	if len(k.secret) == 0 || k.ttl <= 0 {
		return "", time.Time{}, ErrTokenInvalid
	}
	exp := now.Add(k.ttl)

	c := Claims{
		UserID: sub.UserID,
		Email:  sub.Email,
		Role:   sub.Role,
		Kind:   kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sub.UserID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(k.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *HMACService) parse(kind Kind, token string) (Claims, error) {
	k := s.keys[kind]
	if len(k.secret) == 0 || token == "" {
		return Claims{}, ErrTokenInvalid
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	var c Claims
	_, err := jwtlib.NewParser(opts...).ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return k.secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, ErrTokenInvalid
	}

	if c.Kind != kind || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
