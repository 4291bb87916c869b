package respond

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes a 200 JSON response.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 JSON response.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Attachment writes data as a file download named fileName. The caller is
// responsible for making fileName header-safe.
func Attachment(c *gin.Context, fileName, contentType string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}
