// internal/interfaces/http/handlers/response.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope: success, data and an
// optional pagination block.

// respondOK writes a success envelope
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondPage writes a success envelope with pagination
func respondPage(c *gin.Context, status int, data interface{}, pagination interface{}) {
	c.JSON(status, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

// respondError writes a failure envelope
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
