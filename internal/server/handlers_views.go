package server

import (
	"gift-battle/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleDashboard(c *gin.Context) {
	state := s.buildDashboardState(c.Request.Context())
	templ.Handler(web.Dashboard(state)).ServeHTTP(c.Writer, c.Request)
}
