package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// ready is flipped once after the primary's recovery pass completes; before
// that, /health reports "initializing" per SPEC_FULL.md §6.
var ready atomic.Bool

// MarkReady flips the health endpoint to "healthy". Called once by the
// container after wallet.Engine.Recover succeeds.
func MarkReady() {
	ready.Store(true)
}

func Health(c *gin.Context) {
	status := "initializing"
	if ready.Load() {
		status = "healthy"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
