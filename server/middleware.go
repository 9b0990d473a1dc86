package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	errs "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"github.com/waylines/waylines/server/response"
	"github.com/waylines/waylines/services/jwt"
	"gorm.io/gorm"
)

func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}

		user, err := s.userFromToken(accessToken)
		if err != nil {
			switch {
			case errors.Is(err, errs.InActiveUserError):
				respondAndAbort(c, "inactive user", http.StatusUnauthorized, nil, errs.New(err.Error(), http.StatusUnauthorized))
			case errors.Is(err, gorm.ErrRecordNotFound):
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			default:
				respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			}
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Set("access_token", accessToken)
		c.Next()
	}
}

// userFromToken validates the access token against the blacklist and
// signature, then loads the user it names.
func (s *Server) userFromToken(accessToken string) (*models.User, error) {
	if s.AuthRepository.IsTokenInBlacklist(accessToken) {
		return nil, errs.New("Unauthorized", http.StatusUnauthorized)
	}
	accessClaims, err := jwt.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
	if err != nil {
		return nil, err
	}
	idValue, ok := accessClaims["id"].(float64)
	if !ok {
		return nil, errs.New("Invalid userID format", http.StatusBadRequest)
	}
	return s.AuthRepository.FindUserByID(uint(idValue))
}

// socketUser resolves the caller's identity for websocket handshakes. The
// token may arrive in the Authorization header or, since browsers cannot set
// headers on WebSocket connections, in the token query parameter. Returns
// nil for anonymous requests.
func (s *Server) socketUser(c *gin.Context) *models.User {
	accessToken := getTokenFromHeader(c)
	if accessToken == "" {
		accessToken = c.Query("token")
	}
	if accessToken == "" {
		return nil
	}
	user, err := s.userFromToken(accessToken)
	if err != nil {
		log.Printf("socket auth failed: %v", err)
		return nil
	}
	return user
}

func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func respondAndAbort(c *gin.Context, message string, status int, data interface{}, err error) {
	response.JSON(c, message, status, data, err)
	c.Abort()
}

// currentUser returns the authenticated user set by Authorize.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func limitRateForLogin(store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      func(c *gin.Context) string { return c.ClientIP() },
	})
}
