// Package web serves the journal page, the export download and a small
// JSON API over the same journal.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cldixon/moodjournal/internal/entry"
	"github.com/cldixon/moodjournal/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server holds the journal and the hooks the HTTP handlers need
type Server struct {
	journal *entry.Journal
	logger  *zap.SugaredLogger
	backend string
	dataDir string
	onSave  func(*store.Entry)
	started time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and handler logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackend names the storage backend in health output
func WithBackend(name string) Option {
	return func(s *Server) {
		s.backend = name
	}
}

// WithDataDir sets the directory whose filesystem /health reports on
func WithDataDir(dir string) Option {
	return func(s *Server) {
		s.dataDir = dir
	}
}

// OnSave registers a hook called after every saved entry
func OnSave(fn func(*store.Entry)) Option {
	return func(s *Server) {
		s.onSave = fn
	}
}

// New creates a Server for j
func New(j *entry.Journal, opts ...Option) *Server {
	s := &Server{
		journal: j,
		logger:  zap.NewNop().Sugar(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(RequestID(), RequestLogging(s.logger), Recovery(s.logger))
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", s.index)
	router.POST("/entries", s.submit)
	router.GET("/export", s.export)
	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/entries", s.listEntries)
		v1.POST("/entries", s.createEntry)
	}

	return router
}

func (s *Server) saved(e *store.Entry) {
	if s.onSave != nil {
		s.onSave(e)
	}
}
