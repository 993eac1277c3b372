package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"olympuspro/crypto"
	"olympuspro/observability"
	"olympuspro/observability/logging"
)

type contextKey string

const contextKeySender contextKey = "bondd.sender"

var (
	errMissingToken = errors.New("missing bearer token")
	errBadSubject   = errors.New("token subject is not an account address")
)

// AuthConfig configures HMAC signed bearer tokens.
type AuthConfig struct {
	HMACSecret string
	Issuer     string
	Audience   string
	ClockSkew  time.Duration
}

// Authenticator verifies bearer tokens and binds the token subject as the
// call sender.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	skew := cfg.ClockSkew
	if skew <= 0 {
		skew = 2 * time.Minute
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(skew),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Authenticator{
		secret: []byte(strings.TrimSpace(cfg.HMACSecret)),
		parser: jwt.NewParser(opts...),
	}
}

// Authenticate returns the account named by the token subject.
func (a *Authenticator) Authenticate(header string) (crypto.Address, error) {
	raw := extractBearer(header)
	if raw == "" {
		return crypto.Address{}, errMissingToken
	}
	if len(a.secret) == 0 {
		return crypto.Address{}, errors.New("auth secret not configured")
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}); err != nil {
		return crypto.Address{}, err
	}
	sender, err := crypto.DecodeAddress(claims.Subject)
	if err != nil || sender.Prefix() != crypto.AccountPrefix {
		return crypto.Address{}, errBadSubject
	}
	return sender, nil
}

// Middleware rejects requests without a valid token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sender, err := a.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, errMissingToken) {
				reason = "missing_token"
			}
			observability.API().RecordAuthFailure(reason)
			loggerFrom(r.Context()).Warn("auth rejected",
				logging.MaskField("authorization", r.Header.Get("Authorization")),
				logging.MaskField("error", err.Error()))
			writeError(w, r, http.StatusUnauthorized, err)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeySender, sender)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func senderFrom(ctx context.Context) (crypto.Address, bool) {
	sender, ok := ctx.Value(contextKeySender).(crypto.Address)
	return sender, ok
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
