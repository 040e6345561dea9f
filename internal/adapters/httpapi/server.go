// Package httpapi exposes the upload and query surface: spreadsheet
// ingestion, account lookup, log viewing and metrics.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isnadmansour/IsnadTasks/internal/adapters/ingest/xlsx"
	"github.com/isnadmansour/IsnadTasks/internal/application"
	"github.com/isnadmansour/IsnadTasks/internal/domain"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const apiKeyHeader = "api-key"

const agentIDContextKey = "agentID"

var errNotSpreadsheet = errors.New("upload is not a spreadsheet")

type Server struct {
	ingest        *application.IngestService
	registry      ports.AgentRegistry
	logPath       string
	metrics       prometheus.Gatherer
	log           *slog.Logger
	router        *gin.Engine
	parseTasks    func(io.Reader) ([]domain.TaskRow, error)
	parseAccounts func(io.Reader) ([]domain.AccountRow, error)
}

func NewServer(ingest *application.IngestService, registry ports.AgentRegistry, metrics prometheus.Gatherer, logPath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		ingest:        ingest,
		registry:      registry,
		logPath:       logPath,
		metrics:       metrics,
		log:           log,
		parseTasks:    xlsx.ParseTasks,
		parseAccounts: xlsx.ParseAccounts,
	}
	s.router = s.buildRouter()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	}
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"Isnad": "Tasks"})
	})

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})))
	}

	authed := router.Group("/", s.authenticate)
	authed.POST("/upload-isnad-tasks/", s.uploadTasks)
	authed.POST("/upload-target-accounts/", s.uploadAccounts)
	authed.GET("/get-target-account-details/", s.accountDetails)
	authed.GET("/logs", s.readLogs)

	return router
}

// authenticate resolves the api-key header to an agent id and aborts with
// 401 when it is unknown.
func (s *Server) authenticate(c *gin.Context) {
	key := c.GetHeader(apiKeyHeader)

	agentID, err := s.registry.ResolveAPIKey(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownAPIKey) {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid API key"})
			return
		}
		s.log.Error("resolve api key", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "registry unavailable"})
		return
	}

	c.Set(agentIDContextKey, agentID)
	c.Next()
}

func (s *Server) uploadTasks(c *gin.Context) {
	file, err := s.openUpload(c)
	if err != nil {
		return
	}
	defer file.Close()

	rows, err := s.parseTasks(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error processing tasks file: " + err.Error()})
		return
	}

	batch, n, err := s.ingest.ReplaceTaskBatch(c.Request.Context(), rows)
	if err != nil {
		s.log.Error("replace task batch", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error storing tasks"})
		return
	}

	s.log.Info("task batch replaced", "agent", c.GetString(agentIDContextKey), "batch", string(batch), "rows", n)
	c.JSON(http.StatusOK, gin.H{"message": "Tasks stored successfully.", "batch_id": string(batch), "rows": n})
}

func (s *Server) uploadAccounts(c *gin.Context) {
	file, err := s.openUpload(c)
	if err != nil {
		return
	}
	defer file.Close()

	rows, err := s.parseAccounts(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error processing accounts file: " + err.Error()})
		return
	}

	n, err := s.ingest.UpsertTargetAccounts(c.Request.Context(), rows)
	if err != nil {
		s.log.Error("upsert target accounts", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error storing accounts"})
		return
	}

	s.log.Info("target accounts merged", "agent", c.GetString(agentIDContextKey), "rows", n)
	c.JSON(http.StatusOK, gin.H{"message": "Target accounts stored successfully.", "rows": n})
}

func (s *Server) accountDetails(c *gin.Context) {
	name := strings.TrimSpace(c.Query("account_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "account_name is required"})
		return
	}

	account, err := s.ingest.AccountDetails(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Account not found"})
			return
		}
		s.log.Error("account details", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "lookup failed"})
		return
	}

	s.log.Info("account lookup", "agent", c.GetString(agentIDContextKey), "name", name)
	c.JSON(http.StatusOK, gin.H{
		"account_name":     account.Name,
		"account_id":       account.AccountID,
		"account_link":     account.Link,
		"account_status":   account.Status,
		"account_category": account.Category,
		"account_type":     account.Type,
		"publishing_level": account.PublishingLevel,
		"access_level":     account.AccessLevel,
		"is_used":          account.Used,
	})
}

func isSpreadsheet(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}
