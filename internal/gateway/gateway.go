// Package gateway is the HTTP order-ingress service: JWT-authenticated,
// rate-limited, circuit-broken submission of orders and cancellations onto
// the event bus. It owns no order or book state; the matching engine does.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/ratelimit"
	"github.com/novaex/tradepipe/internal/types"
	"go.uber.org/zap"
)

const breakerName = "gateway"

// Server exposes the order gateway's REST surface.
type Server struct {
	logger   *zap.Logger
	bus      bus.Bus
	limiter  *ratelimit.Limiter
	breakers *breaker.Factory
	cfg      config.GatewayConfig
	engine   *gin.Engine
}

// NewServer builds a Server wired to bus b for publishing accepted orders
// and cancel requests.
func NewServer(cfg config.GatewayConfig, logger *zap.Logger, b bus.Bus, limiter *ratelimit.Limiter, breakers *breaker.Factory) *Server {
	s := &Server{
		logger:   logger.Named("gateway"),
		bus:      b,
		limiter:  limiter,
		breakers: breakers,
		cfg:      cfg,
	}
	s.engine = s.buildRouter()
	return s
}

// Engine returns the underlying gin.Engine, e.g. for mounting onto a shared
// http.Server alongside /metrics.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts listening on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	orders := r.Group("/orders")
	orders.Use(JWTAuth([]byte(s.cfg.JWTSigningKey)))
	orders.POST("", s.createOrder)
	orders.DELETE("/:id", s.cancelOrder)

	return r
}

func (s *Server) createOrder(c *gin.Context) {
	// 1. circuit breaker: reject immediately if the gateway's own breaker
	// is already open, before spending any work on this request.
	if err := s.breakers.Execute(breakerName, s.cfg.BreakerThreshold, s.cfg.BreakerCooldown, func() error { return nil }); err != nil {
		respondError(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding order request"))
		return
	}

	// 2. validate_order, exact rule order.
	if err := validateOrder(&req); err != nil {
		respondError(c, err)
		return
	}

	userID, _ := c.Get(contextUserIDKey)

	// 3. rate limiter, keyed by the authenticated caller.
	allowed, err := s.limiter.Allowed(c.Request.Context(), userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		respondError(c, pipeerr.New(pipeerr.ErrRateLimited, "rate limit exceeded"))
		return
	}

	timeInForce := types.TimeInForce(req.TimeInForce)
	if timeInForce == "" {
		timeInForce = types.TIFGoodTilCancel
	}

	now := time.Now()
	order := types.Order{
		OrderID:       uuid.NewString(),
		ClientOrderID: req.ClientOrderID,
		UserID:        userID.(string),
		Symbol:        req.Symbol,
		Side:          types.Side(req.Side),
		OrderType:     types.OrderType(req.OrderType),
		TimeInForce:   timeInForce,
		Price:         req.Price,
		StopPrice:     req.StopPrice,
		Quantity:      req.Quantity,
		Status:        types.OrderStatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 4. publish, through the same breaker so a genuinely failing bus
	// trips it for subsequent requests.
	publishErr := s.breakers.Execute(breakerName, s.cfg.BreakerThreshold, s.cfg.BreakerCooldown, func() error {
		body, err := json.Marshal(order)
		if err != nil {
			return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding order")
		}
		return s.bus.Publish(c.Request.Context(), bus.TopicOrdersIncoming, body)
	})
	if publishErr != nil {
		respondError(c, publishErr)
		return
	}

	// The caller's client_order_id is returned verbatim: it is never
	// regenerated here.
	c.JSON(http.StatusAccepted, types.OrderResponse{
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		Status:        "accepted",
		Reason:        "order_received",
		Timestamp:     now,
	})
}

type cancelRequest struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) cancelOrder(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		respondError(c, pipeerr.New(pipeerr.ErrInvalidOrder, "symbol query parameter is required to route cancellation"))
		return
	}
	userID, _ := c.Get(contextUserIDKey)

	req := cancelRequest{
		OrderID:   c.Param("id"),
		Symbol:    symbol,
		UserID:    userID.(string),
		Timestamp: time.Now(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		respondError(c, pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding cancel request"))
		return
	}
	if err := s.bus.Publish(c.Request.Context(), bus.TopicOrdersCancelRequested, body); err != nil {
		respondError(c, pipeerr.Wrap(err, pipeerr.ErrInternal, "publishing cancel request"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"order_id": req.OrderID, "status": "cancel_requested"})
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
	case pipeerr.ErrUnauthorized:
		return http.StatusUnauthorized
	case pipeerr.ErrRateLimited:
		return http.StatusTooManyRequests
	case pipeerr.ErrOrderNotFound:
		return http.StatusNotFound
	case pipeerr.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
