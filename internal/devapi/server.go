// Package devapi is a local implementation of the admin REST API. It backs
// `roadmap-admin serve-dev` and is the fake server in client tests.
package devapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"roadmap-admin/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	repo    *Repo
	log     *zap.Logger
	metrics *metrics
}

func NewServer(repo *Repo, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{repo: repo, log: log, metrics: newMetrics()}
}

type response struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	Message     string             `json:"message,omitempty"`
	Roadmaps    []model.Roadmap    `json:"roadmaps,omitempty"`
	Submissions []model.Submission `json:"submissions,omitempty"`
	Pagination  *model.Pagination  `json:"pagination,omitempty"`
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests(), s.metrics.middleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, response{Success: true}) })
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	r.GET("/admin/roadmaps", s.handleListRoadmaps)
	r.POST("/roadmap/create", s.handleCreateRoadmap)
	r.PUT("/roadmap", s.handleUpdateRoadmap)
	r.DELETE("/roadmap", s.handleDeleteRoadmap)
	r.POST("/roadmap/event", s.handleCreateEvent)
	r.DELETE("/roadmap/event", s.handleDeleteEvent)
	r.GET("/admin/submissions", s.handleListSubmissions(false, false))
	r.GET("/event/submissions", s.handleListSubmissions(true, false))
	r.GET("/event/submissions/pending", s.handleListSubmissions(true, true))
	r.POST("/roadmap/review", s.handleReview)
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, response{Success: false, Error: msg})
}

func ok(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response{Success: true, Message: msg})
}

func (s *Server) storageFailure(c *gin.Context, op string, err error) {
	s.log.Error("storage failure", zap.String("op", op), zap.Error(err))
	fail(c, http.StatusInternalServerError, "Failed to "+op)
}

func (s *Server) handleListRoadmaps(c *gin.Context) {
	rms, err := s.repo.ListRoadmaps(c.Request.Context())
	if err != nil {
		s.storageFailure(c, "fetch roadmaps", err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Roadmaps: rms})
}

type roadmapBody struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   *string             `json:"start_date"`
	EndDate     *string             `json:"end_date"`
	Status      model.RoadmapStatus `json:"status"`
	UserID      string              `json:"userid"`
	RoadmapID   model.ID            `json:"roadmap_id"`
}

func (b roadmapBody) input() RoadmapInput {
	st := b.Status
	if st == "" {
		st = model.RoadmapActive
	}
	return RoadmapInput{
		Title:       strings.TrimSpace(b.Title),
		Description: b.Description,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Status:      st,
	}
}

func (b roadmapBody) check() string {
	if strings.TrimSpace(b.Title) == "" {
		return "Title is required"
	}
	if b.Status != "" && !b.Status.Valid() {
		return "Invalid status"
	}
	return ""
}

func (s *Server) handleCreateRoadmap(c *gin.Context) {
	var body roadmapBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := body.check(); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(body.UserID) == "" {
		fail(c, http.StatusBadRequest, "User id is required")
		return
	}
	if _, err := s.repo.CreateRoadmap(c.Request.Context(), body.input(), strings.TrimSpace(body.UserID)); err != nil {
		s.storageFailure(c, "create roadmap", err)
		return
	}
	ok(c, "Roadmap created")
}

func (s *Server) handleUpdateRoadmap(c *gin.Context) {
	var body roadmapBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.RoadmapID.IsZero() {
		fail(c, http.StatusBadRequest, "Roadmap id is required")
		return
	}
	if msg := body.check(); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := s.repo.UpdateRoadmap(c.Request.Context(), body.RoadmapID, body.input()); err != nil {
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusNotFound, "Roadmap not found")
			return
		}
		s.storageFailure(c, "update roadmap", err)
		return
	}
	ok(c, "Roadmap updated")
}

func (s *Server) handleDeleteRoadmap(c *gin.Context) {
	var body struct {
		RoadmapID model.ID `json:"roadmap_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RoadmapID.IsZero() {
		fail(c, http.StatusBadRequest, "Roadmap id is required")
		return
	}
	if err := s.repo.DeleteRoadmap(c.Request.Context(), body.RoadmapID); err != nil {
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusNotFound, "Roadmap not found")
			return
		}
		s.storageFailure(c, "delete roadmap", err)
		return
	}
	ok(c, "Roadmap deleted")
}

func (s *Server) handleCreateEvent(c *gin.Context) {
	in := EventInput{
		RoadmapID:   model.ID(strings.TrimSpace(c.PostForm("roadmap_id"))),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if in.RoadmapID.IsZero() {
		fail(c, http.StatusBadRequest, "Roadmap id is required")
		return
	}
	if raw := strings.TrimSpace(c.PostForm("points")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "Points must be a non-negative integer")
			return
		}
		in.Points = n
	}
	// Image bytes are not stored; only the original file name is kept.
	if fh, err := c.FormFile("event_image"); err == nil && fh != nil {
		in.ImageName = filepath.Base(fh.Filename)
	}
	if _, err := s.repo.CreateEvent(c.Request.Context(), in); err != nil {
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusNotFound, "Roadmap not found")
			return
		}
		s.storageFailure(c, "create event", err)
		return
	}
	ok(c, "Event created")
}

func (s *Server) handleDeleteEvent(c *gin.Context) {
	var body struct {
		EventID model.ID `json:"event_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.EventID.IsZero() {
		fail(c, http.StatusBadRequest, "Event id is required")
		return
	}
	if err := s.repo.DeleteEvent(c.Request.Context(), body.EventID); err != nil {
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusNotFound, "Event not found")
			return
		}
		s.storageFailure(c, "delete event", err)
		return
	}
	ok(c, "Event deleted")
}

func (s *Server) handleListSubmissions(eventScoped, pendingOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := SubmissionFilter{
			PendingOnly: pendingOnly,
			Page:        atoiOr(c.Query("page"), 1),
			Limit:       atoiOr(c.Query("limit"), defaultLimit),
		}
		if eventScoped {
			f.EventID = model.ID(strings.TrimSpace(c.Query("event_id")))
			if f.EventID.IsZero() {
				fail(c, http.StatusBadRequest, "Event id is required")
				return
			}
		}
		subs, pg, err := s.repo.ListSubmissions(c.Request.Context(), f)
		if err != nil {
			s.storageFailure(c, "fetch submissions", err)
			return
		}
		c.JSON(http.StatusOK, response{Success: true, Submissions: subs, Pagination: &pg})
	}
}

func (s *Server) handleReview(c *gin.Context) {
	var body struct {
		EventID     model.ID               `json:"event_id"`
		StudentID   model.ID               `json:"student_id"`
		RoadmapID   model.ID               `json:"roadmap_id"`
		Status      model.SubmissionStatus `json:"status"`
		CurrentUser string                 `json:"currentuser"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.EventID.IsZero() || body.StudentID.IsZero() {
		fail(c, http.StatusBadRequest, "Event id and student id are required")
		return
	}
	if !body.Status.IsDecision() {
		fail(c, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}
	err := s.repo.Review(c.Request.Context(), body.StudentID, body.EventID, body.Status, strings.TrimSpace(body.CurrentUser))
	switch {
	case errors.Is(err, errNotFound):
		fail(c, http.StatusNotFound, "Submission not found")
	case errors.Is(err, errAlreadyReviewed):
		fail(c, http.StatusConflict, "Submission already reviewed")
	case err != nil:
		s.storageFailure(c, "review submission", err)
	default:
		ok(c, "Submission "+string(body.Status))
	}
}

func atoiOr(s string, d int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return d
	}
	return n
}

type metrics struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devapi_requests_total",
		Help: "Total number of dev API requests",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devapi_request_duration_seconds",
		Help:    "Duration of dev API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(total, duration)
	return &metrics{registry: reg, total: total, duration: duration}
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.total.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
