package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat responds with a 200 so clients can check if the server's alive
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate responds with a 200 when the bearer token passed the JWT
// middleware. The middleware does all the work
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
