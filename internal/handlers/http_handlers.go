package handlers

import (
	"errors"
	"net/http"
	"time"

	"classdraw/internal/metrics"
	"classdraw/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service    *services.LotteryService
	hub        *ResultsHub
	limiter    *RateLimiter
	sessionTTL time.Duration
}

// NewHTTPHandler creates a new HTTPHandler. hub and limiter may be nil.
func NewHTTPHandler(service *services.LotteryService, hub *ResultsHub, limiter *RateLimiter, sessionTTL time.Duration) *HTTPHandler {
	return &HTTPHandler{
		service:    service,
		hub:        hub,
		limiter:    limiter,
		sessionTTL: sessionTTL,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *HTTPHandler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", h.Health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	api := r.Group("/api")
	if h.limiter != nil {
		api.Use(h.limiter.Middleware())
	}
	h.RegisterPublicRoutes(api)

	sessionRoutes := api.Group("/")
	sessionRoutes.Use(h.SessionMiddleware())
	h.RegisterSessionRoutes(sessionRoutes)

	adminRoutes := api.Group("/admin")
	adminRoutes.Use(h.SessionMiddleware(), h.AdminMiddleware())
	h.RegisterAdminRoutes(adminRoutes)

	return r
}

// RegisterPublicRoutes registers the routes that need no session.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRoutes) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}

// RegisterSessionRoutes registers the routes for any logged-in user.
func (h *HTTPHandler) RegisterSessionRoutes(router gin.IRoutes) {
	router.GET("/me", h.Me)
	router.GET("/me/records", h.MyRecords)
	router.GET("/prizes", h.ListPrizes)
	router.GET("/prizes/available", h.ListAvailablePrizes)
	router.POST("/draw", h.PerformDraw)
}

// RegisterAdminRoutes registers the administrator routes.
func (h *HTTPHandler) RegisterAdminRoutes(router gin.IRoutes) {
	router.GET("/records", h.AllRecords)
	router.GET("/records/winning", h.WinningRecords)
	router.GET("/records.csv", h.ExportRecordsCSV)
	router.GET("/users", h.ListUsers)
	router.GET("/prizes", h.ListPrizes)
	router.POST("/prizes", h.AddPrize)
	router.POST("/prizes/csv", h.UploadPrizesCSV)
	if h.hub != nil {
		router.GET("/ws", h.hub.ServeWS)
	}
}

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported generically.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidParticipant), errors.Is(err, services.ErrInvalidPrize):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrUnknownParticipant):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyParticipated):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Errorf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "something went wrong, please try again"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// Login registers or finds the student and sets the session cookie.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.StudentID, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout ends the current session, if any.
func (h *HTTPHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		h.service.Logout(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Me returns the current user and whether they have drawn.
func (h *HTTPHandler) Me(c *gin.Context) {
	user := currentUser(c)
	participated, err := h.service.HasParticipated(c.Request.Context(), user.StudentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "hasParticipated": participated})
}

// MyRecords returns the current user's records.
func (h *HTTPHandler) MyRecords(c *gin.Context) {
	records, err := h.service.MyRecords(c.Request.Context(), currentUser(c).StudentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ListPrizes returns the catalog with remaining stock.
func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	prizes, err := h.service.Prizes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// ListAvailablePrizes returns the prizes still in stock.
func (h *HTTPHandler) ListAvailablePrizes(c *gin.Context) {
	prizes, err := h.service.AvailablePrizes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// PerformDraw runs the current student's draw.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	user := currentUser(c)
	if user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrators cannot draw"})
		return
	}

	record, err := h.service.Draw(c.Request.Context(), user.StudentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// AllRecords returns every record.
func (h *HTTPHandler) AllRecords(c *gin.Context) {
	records, err := h.service.AllRecords(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// WinningRecords returns the winning records.
func (h *HTTPHandler) WinningRecords(c *gin.Context) {
	records, err := h.service.WinningRecords(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ListUsers returns every registered user.
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	users, err := h.service.Users(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type addPrizeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	Remaining   int    `json:"remaining"`
}

// AddPrize appends a prize to the catalog.
func (h *HTTPHandler) AddPrize(c *gin.Context) {
	var req addPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prize, err := h.service.AddPrize(c.Request.Context(), req.Name, req.Description, req.Level, req.Remaining)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prize": prize})
}

// UploadPrizesCSV handles the CSV upload for prizes.
func (h *HTTPHandler) UploadPrizesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("prizeCSV")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing prizeCSV file"})
		return
	}
	defer file.Close()

	added, err := h.service.ImportPrizesCSV(c.Request.Context(), file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// ExportRecordsCSV downloads every record as a CSV file.
func (h *HTTPHandler) ExportRecordsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=lottery_records.csv")

	if err := h.service.ExportRecordsCSV(c.Request.Context(), c.Writer); err != nil {
		logger.Errorf("Error writing records CSV: %v", err)
	}
}
