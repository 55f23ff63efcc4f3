package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cldixon/moodjournal/internal/entry"
	"github.com/cldixon/moodjournal/internal/export"
	"github.com/cldixon/moodjournal/internal/history"
	"github.com/cldixon/moodjournal/internal/metrics"
	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/store"
)

const (
	viewFlat = "flat"
	viewDate = "date"
)

type notice struct {
	Kind    string // success, warning, or error
	Message string
}

// page is everything the journal template renders
type page struct {
	Moods    []mood.Mood
	Filter   mood.Mood
	View     string
	Entries  []*store.Entry
	Groups   []history.Group
	Total    int
	Selected mood.Mood
	Text     string
	Latest   *store.Entry
	Notices  []notice
}

func (p *page) notify(kind, format string, args ...interface{}) {
	p.Notices = append(p.Notices, notice{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func newPage(c *gin.Context) (*page, bool) {
	p := &page{
		Moods:    mood.All(),
		View:     viewFlat,
		Selected: mood.Happy,
	}
	if c.Query("view") == viewDate {
		p.View = viewDate
	}

	filter, err := mood.ParseFilter(c.Query("mood"))
	if err != nil {
		p.notify("warning", "Unknown mood filter %q, showing all entries.", c.Query("mood"))
		return p, false
	}
	p.Filter = filter
	return p, true
}

// render loads the history into p and writes the page once
func (s *Server) render(c *gin.Context, status int, p *page) {
	entries, err := s.journal.Entries(c.Request.Context())
	if err != nil {
		c.Error(err)
		p.notify("error", "Could not load your entries: %v", err)
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
	}

	p.Total = len(entries)
	if p.View == viewDate {
		p.Groups = history.ByDate(entries, p.Filter)
	} else {
		p.Entries = history.Newest(entries, p.Filter)
	}

	c.HTML(status, "index.html", p)
}

func (s *Server) index(c *gin.Context) {
	p, ok := newPage(c)
	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	s.render(c, status, p)
}

func (s *Server) submit(c *gin.Context) {
	p, _ := newPage(c)
	text := c.PostForm("text")

	m, err := mood.Parse(c.PostForm("mood"))
	if err != nil {
		p.Text = text
		p.notify("warning", "Please pick one of the listed moods.")
		s.render(c, http.StatusUnprocessableEntity, p)
		return
	}
	p.Selected = m

	res, err := s.journal.Submit(c.Request.Context(), m, text)
	if err != nil {
		p.Text = text
		status := submitStatus(err)
		if status == http.StatusUnprocessableEntity {
			p.notify("warning", "Please write something before saving.")
		} else {
			c.Error(err)
			p.notify("error", "Your entry could not be saved: %v", err)
		}
		s.render(c, status, p)
		return
	}

	s.saved(res.Entry)
	p.Latest = res.Entry
	p.notify("success", "Entry saved!")
	if res.ReflectionErr != nil {
		c.Error(res.ReflectionErr)
		p.notify("error", "AI reflection failed: %v", res.ReflectionErr)
	}
	s.render(c, http.StatusOK, p)
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, entry.ErrEmptyText), errors.Is(err, entry.ErrInvalidMood):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) export(c *gin.Context) {
	entries, err := s.journal.Entries(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+export.Filename)
	c.Data(http.StatusOK, export.ContentType, export.RTF(entries))
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"backend": s.backend,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	}

	entries, err := s.journal.Entries(c.Request.Context())
	if err != nil {
		c.Error(err)
		resp["status"] = "degraded"
		resp["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp["entries"] = len(entries)

	if s.dataDir != "" {
		snap, err := metrics.Gather(s.dataDir)
		if err != nil {
			s.logger.Warnw("failed to gather host metrics", "error", err)
		} else {
			resp["host"] = snap
			if snap.LowDisk() {
				resp["status"] = "low_disk"
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

type createEntryRequest struct {
	Mood string `json:"mood"`
	Text string `json:"text"`
}

type createEntryResponse struct {
	Entry           *store.Entry `json:"entry"`
	ReflectionError string       `json:"reflection_error,omitempty"`
}

type groupResponse struct {
	Date    string         `json:"date"`
	Entries []*store.Entry `json:"entries"`
}

func (s *Server) listEntries(c *gin.Context) {
	filter, err := mood.ParseFilter(c.Query("mood"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := s.journal.Entries(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	if c.Query("view") == viewDate {
		groups := []groupResponse{}
		for _, g := range history.ByDate(entries, filter) {
			groups = append(groups, groupResponse{Date: g.Date.Format("2006-01-02"), Entries: g.Entries})
		}
		c.JSON(http.StatusOK, gin.H{"groups": groups})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": history.Newest(entries, filter)})
}

func (s *Server) createEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	m, err := mood.Parse(req.Mood)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	res, err := s.journal.Submit(c.Request.Context(), m, req.Text)
	if err != nil {
		status := submitStatus(err)
		if status == http.StatusInternalServerError {
			c.Error(err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.saved(res.Entry)

	resp := createEntryResponse{Entry: res.Entry}
	if res.ReflectionErr != nil {
		c.Error(res.ReflectionErr)
		resp.ReflectionError = res.ReflectionErr.Error()
	}
	c.JSON(http.StatusCreated, resp)
}
