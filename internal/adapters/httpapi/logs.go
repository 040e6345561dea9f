package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// readLogs returns the application log newest-first, mirroring how the
// operators read it: the latest ingestions and lookups on top.
func (s *Server) readLogs(c *gin.Context) {
	data, err := os.ReadFile(s.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "log file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "cannot read log file"})
		return
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	c.String(http.StatusOK, strings.Join(lines, "\n"))
}
