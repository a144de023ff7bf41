package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/srad/videoanalyzer/app"
)

// NewToken Signs an HS256 token that CheckAuthorizationHeader accepts until ttl passed.
func NewToken(secret string, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("no secret configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return signed, nil
}

// CheckAuthorizationHeader Requires a valid bearer token when secret is set,
// otherwise every request passes.
func CheckAuthorizationHeader(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		appG := app.Gin{C: c}
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			// Workaround for JWT over websockets. The bearer can also be sent as get parameter.
			if getAuth, exists := c.GetQuery("Authorization"); exists && getAuth != "" {
				authHeader = getAuth
			} else {
				appG.Error(http.StatusUnauthorized, errors.New("authorization header is missing"))
				return
			}
		}

		authToken := strings.Split(authHeader, " ")
		if len(authToken) != 2 || authToken[0] != "Bearer" {
			appG.Error(http.StatusUnauthorized, errors.New("invalid token format"))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(authToken[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			appG.Error(http.StatusUnauthorized, errors.New("invalid or expired token"))
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}
