package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
)

// SubjectKey is the gin context key holding the token subject.
const SubjectKey = "subject"

// IssueToken signs an HS256 token for subject that expires after ttl.
func IssueToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// bearerToken extracts the token from the Authorization header, or from
// the token query parameter for WebSocket clients that cannot set
// headers.
func bearerToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return "", false
		}
		return token, true
	}
	if t := c.Query("token"); t != "" {
		return t, true
	}
	return "", false
}

// AuthMiddleware validates HS256 bearer tokens signed with secret and
// issued by issuer.
func AuthMiddleware(secret, issuer string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	key := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(tokenString, &claims, key); err != nil {
			msg := "Invalid token"
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token expired"
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				msg = "Invalid token signature"
			case errors.Is(err, jwt.ErrTokenInvalidIssuer):
				msg = "Invalid token issuer"
			}
			logging.SecurityEvent("unauthorized_request", "auth", "path", c.Request.URL.Path, "reason", msg)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}
