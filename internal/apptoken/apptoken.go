// Package apptoken issues and verifies the bearer tokens that attribute
// capability calls to an app. The token subject is the app's package name.
package apptoken

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "pbd/pkg/domain-errors"
	"pbd/pkg/platform/middleware/auth"
	"pbd/pkg/requestcontext"
)

// Issuer is the iss claim of tokens minted by this process.
const Issuer = "pbd"

// Claims are the claims carried by an app token.
type Claims struct {
	Env string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// Service signs app tokens with HS256.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	env        string
}

func NewService(signingKey, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// SetEnv annotates issued tokens with an environment name.
func (s *Service) SetEnv(env string) {
	s.env = env
}

// Issue mints a token attributing calls to appID.
func (s *Service) Issue(ctx context.Context, appID string) (string, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "app id cannot be empty")
	}
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Env: s.env,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   appID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate verifies signature, expiry and issuer and returns the claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		if errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no app")
	}
	return claims, nil
}

// Adapter exposes a Service to the auth middleware.
type Adapter struct {
	service *Service
}

func NewAdapter(service *Service) *Adapter {
	return &Adapter{service: service}
}

func (a *Adapter) ValidateAppToken(tokenString string) (*auth.AppClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.AppClaims{AppID: claims.Subject, JTI: claims.ID}, nil
}
