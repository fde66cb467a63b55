package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "pawport/pkg/domain"
	"pawport/pkg/requestcontext"
)

// Audience values carried in the "aud" claim. A handler token cannot
// reach business routes and vice versa.
const (
	AudienceHandler  = "pawport:handler"
	AudienceBusiness = "pawport:business"
)

// Verifier validates HS256 bearer tokens issued for handlers and
// scanning businesses.
type Verifier struct {
	key []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{key: []byte(signingKey)}
}

func (v *Verifier) parse(tokenString, audience string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.key, nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// RequireHandlerAuth authenticates handler-audience tokens and injects
// the handler ID into the context.
func RequireHandlerAuth(v *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenString, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}
			subject, err := v.parse(tokenString, AudienceHandler)
			if err != nil {
				logger.WarnContext(ctx, "handler token rejected",
					"error", err, "request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			handlerID, err := id.ParseHandlerID(subject)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithHandlerID(ctx, handlerID)))
		})
	}
}

// RequireBusinessAuth authenticates business-audience tokens and
// injects the organization ID into the context.
func RequireBusinessAuth(v *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenString, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}
			subject, err := v.parse(tokenString, AudienceBusiness)
			if err != nil {
				logger.WarnContext(ctx, "business token rejected",
					"error", err, "request_id", requestcontext.RequestID(ctx))
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			orgID, err := id.ParseOrgID(subject)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithOrgID(ctx, orgID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	return strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
}
