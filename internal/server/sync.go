package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) SyncPush(c *gin.Context) {
	count, err := s.sched.Push(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"pushed": count}})
}

func (s *Server) SyncPull(c *gin.Context) {
	report, err := s.sched.Pull(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}

func (s *Server) SyncEnable(c *gin.Context) {
	s.sched.Enable()
	c.JSON(http.StatusOK, gin.H{"data": s.sched.Status()})
}
