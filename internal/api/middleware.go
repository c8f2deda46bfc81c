package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/rongwang/timesheet-server/internal/utils"
)

// JWTSecret makes the token signing key available to AuthMiddleware
func JWTSecret(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		c.Set("jwtSecret", key)
		c.Next()
	}
}

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authentication required")
			return
		}

		// Check if the Authorization header starts with "Bearer "
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			unauthorized(c, "Invalid token format")
			return
		}

		// Parse the JWT token
		jwtSecret := c.MustGet("jwtSecret").([]byte)
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "Invalid token")
			return
		}

		// Get user ID from the token claims
		userID, err := token.Claims.GetSubject()
		if err != nil || userID == "" {
			unauthorized(c, "Invalid user ID in token")
			return
		}

		// Set user ID in the context
		c.Set("userId", userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    CodeUnauthorized,
		Message: message,
	})
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx
func RequestLogger(logger *utils.Logger) gin.HandlerFunc {
	logger = logger.WithComponent(utils.ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			utils.FieldMethod, c.Request.Method,
			utils.FieldPath, c.Request.URL.Path,
			utils.FieldStatusCode, status,
			utils.FieldDuration, time.Since(start).Milliseconds(),
			utils.FieldClientIP, c.ClientIP(),
		}
		if id := c.GetString("userId"); id != "" {
			args = append(args, utils.FieldUserID, id)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "request completed", args...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "request completed", args...)
		default:
			logger.InfoContext(ctx, "request completed", args...)
		}
	}
}
