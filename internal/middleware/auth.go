package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

var errInvalidToken = &errs.Error{Kind: errs.KindUnauthenticated, Message: "Given token not valid for any token type"}

// subject validates a bearer token issued by the identity provider and returns its sub claim.
func subject(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("missing sub claim")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("sub claim is not a uuid: %w", err)
	}
	return userID, nil
}

func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// AuthMiddleware rejects requests without a valid bearer token and stores the subject as user_id.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c)
		if !ok {
			errs.Respond(c, errs.ErrUnauthenticated)
			return
		}

		userID, err := subject(tokenStr, key)
		if err != nil {
			errs.Respond(c, errInvalidToken)
			logs.LogJSON("WARN", "Rejected bearer token", map[string]interface{}{
				"error": err.Error(),
				"route": c.FullPath(),
			})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
