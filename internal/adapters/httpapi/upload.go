package httpapi

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

// openUpload validates and opens the multipart "file" field. On failure it
// writes the error response itself and returns a non-nil error.
func (s *Server) openUpload(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file field is required"})
		return nil, err
	}

	if !isSpreadsheet(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only Excel files are allowed"})
		return nil, errNotSpreadsheet
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "cannot open upload"})
		return nil, err
	}

	return file, nil
}
