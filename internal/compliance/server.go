package compliance

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/store"
	"github.com/novaex/tradepipe/internal/types"
	"go.uber.org/zap"
)

// Server exposes the compliance service's HTTP query surface: a synchronous
// check endpoint for callers that want an inline AMLAlert list rather than
// waiting on the bus, plus read endpoints over the persisted alerts, KYC
// records, and risk profiles.
type Server struct {
	logger    *zap.Logger
	evaluator *Evaluator
	store     store.Store
	engine    *gin.Engine
}

// NewServer builds a Server wired to evaluator for synchronous checks and
// s for the read-only query endpoints.
func NewServer(logger *zap.Logger, evaluator *Evaluator, s store.Store) *Server {
	srv := &Server{logger: logger.Named("compliance-http"), evaluator: evaluator, store: s}
	srv.engine = srv.buildRouter()
	return srv
}

// Engine returns the underlying gin.Engine.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts listening on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now(), "service": "compliance"})
	})
	r.POST("/compliance/check", s.check)
	r.GET("/compliance/alerts", s.listAlerts)
	r.GET("/kyc/status", s.kycStatus)
	r.GET("/risk/profile", s.riskProfile)

	return r
}

func (s *Server) check(c *gin.Context) {
	var t types.Transaction
	if err := c.ShouldBindJSON(&t); err != nil {
		respondError(c, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding transaction"))
		return
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	alerts, err := s.evaluator.Evaluate(c.Request.Context(), t)
	if err != nil {
		respondError(c, err)
		return
	}
	if alerts == nil {
		alerts = []types.AMLAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) listAlerts(c *gin.Context) {
	filter := store.AlertFilter{
		UserID:   c.Query("user_id"),
		Severity: c.Query("severity"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			respondError(c, pipeerr.Wrap(err, pipeerr.ErrValidationFailed, "parsing from"))
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			respondError(c, pipeerr.Wrap(err, pipeerr.ErrValidationFailed, "parsing to"))
			return
		}
		filter.To = t
	}

	alerts, err := s.store.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if alerts == nil {
		alerts = []types.AMLAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) kycStatus(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondError(c, pipeerr.New(pipeerr.ErrMissingField, "user_id query parameter is required"))
		return
	}

	record, err := s.evaluator.kyc.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": string(pipeerr.ErrNoKYCRecord), "message": "no kyc record for user"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) riskProfile(c *gin.Context) {
	entityID := c.Query("entity_id")
	if entityID == "" {
		respondError(c, pipeerr.New(pipeerr.ErrMissingField, "entity_id query parameter is required"))
		return
	}

	profile, err := s.store.GetRiskProfile(c.Request.Context(), entityID)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no risk profile for entity"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func respondError(c *gin.Context, err error) {
	var pe *pipeerr.Error
	if !pipeerr.As(err, &pe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(pe.Code), gin.H{"error": string(pe.Code), "message": pe.Message})
}

func statusFor(code pipeerr.Code) int {
	switch code {
	case pipeerr.ErrInvalidOrder, pipeerr.ErrValidationFailed, pipeerr.ErrMissingField:
		return http.StatusBadRequest
	case pipeerr.ErrOrderNotFound:
		return http.StatusNotFound
	case pipeerr.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
