package http

import (
	"net/http"
	"strings"

	"github.com/chronos-hq/timetrack-backend-go/internal/handler/http/response"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/cache"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/jwt"
)

type SessionHandler interface {
	Logout(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	jwtService    jwt.Service
	projectsCache *cache.ProjectsCache
}

func NewSessionHandler(jwtService jwt.Service, projectsCache *cache.ProjectsCache) SessionHandler {
	return &sessionHandlerImpl{
		jwtService:    jwtService,
		projectsCache: projectsCache,
	}
}

// Logout revokes the access token and drops per-employee cached state.
func (h *sessionHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	employeeID := employeeIDFromContext(r)
	if employeeID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		h.jwtService.RevokeToken(strings.TrimPrefix(authHeader, "Bearer "))
	}

	h.projectsCache.Invalidate(employeeID)

	response.SuccessWithMessage(w, "Logged out", nil)
}
