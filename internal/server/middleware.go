package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
)

const contextUserKey = "auth_user"

// AuthRequired resolves the session cookie into a user and stores it on
// the request context. Requests without a valid session never reach the
// handler.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireAccess gates a route on the enforcer's decision for the
// current user's role. Must run after AuthRequired.
func (s *Server) RequireAccess(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), user.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}

func (s *Server) currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
