package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
)

var middlewareTracer = otel.Tracer("auth-middleware")

// SessionContextKey is the gin context key the loaded session lives under.
const SessionContextKey = "session"

// LoadSession is a gin middleware that resolves the session cookie
// against the store and attaches the session to the request context.
// Requests without a valid session continue anonymously.
func LoadSession(store SessionStore, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.load_session")
		defer span.End()

		id, err := c.Cookie(cookieName)
		if err != nil || id == "" {
			span.SetAttributes(attribute.Bool("session.present", false))
			c.Next()
			return
		}

		session, err := store.Get(ctx, id)
		if err != nil {
			span.SetAttributes(attribute.Bool("session.present", false))
			c.Next()
			return
		}

		span.SetAttributes(
			attribute.Bool("session.present", true),
			attribute.Bool("session.authenticated", IsAuthenticated(session)),
		)
		if IsAuthenticated(session) {
			c.Set("user_id", session.UserID)
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// RequireSession aborts with 401 unless the request carries an
// authenticated session. Must run after LoadSession.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := middlewareTracer.Start(c.Request.Context(), "auth.require_session")
		defer span.End()

		session := SessionFromContext(c)
		if !IsAuthenticated(session) {
			span.SetAttributes(attribute.Bool("session.authenticated", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
				"code":    http.StatusUnauthorized,
			})
			return
		}

		span.SetAttributes(
			attribute.Bool("session.authenticated", true),
			attribute.String("user.id", session.UserID),
		)
		c.Next()
	}
}

// SessionFromContext returns the session attached by LoadSession, or nil.
func SessionFromContext(c *gin.Context) *Session {
	v, ok := c.Get(SessionContextKey)
	if !ok {
		return nil
	}
	s, ok := v.(*Session)
	if !ok {
		return nil
	}
	return s
}

// RequireAuthenticated returns the session's user identity or an auth
// error suitable for the error boundary.
func RequireAuthenticated(c *gin.Context) (*SessionUser, error) {
	user := UserFromSession(SessionFromContext(c))
	if user == nil {
		return nil, apperr.NewUnauthorized("Authentication required")
	}
	return user, nil
}
