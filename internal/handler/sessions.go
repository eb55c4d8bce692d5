package handler

import (
	"errors"
	"net/http"
	"time"

	"swapscout/internal/logger"
	"swapscout/internal/swapper"
	"swapscout/internal/tradequote"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// QuoteSetView is the client view of a session's quotes.
type QuoteSetView struct {
	TradeID    string             `json:"trade_id"`
	Generation uint64             `json:"generation"`
	Loading    bool               `json:"loading"`
	Skipped    bool               `json:"skipped"`
	Quotes     []swapper.ApiQuote `json:"quotes"`
	Active     *swapper.ApiQuote  `json:"active,omitempty"`
}

func newQuoteSetView(set tradequote.ApiQuoteSet) QuoteSetView {
	return QuoteSetView{
		TradeID:    set.TradeID,
		Generation: set.Generation,
		Loading:    set.Loading(),
		Skipped:    set.Skipped,
		Quotes:     set.Ranked(),
		Active:     set.Active,
	}
}

type selectRequest struct {
	SwapperName string `json:"swapper_name" binding:"required"`
}

// CreateSession godoc
// @Summary      Start a quote session
// @Description  Opens a polling quote session for a new trade, or resumes a trade recorded in the execution store
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body  tradequote.SessionOptions  false  "Session options"
// @Success      201  {object}  tradequote.Snapshot
// @Failure      409  {object}  map[string]string
// @Router       /api/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-session")
	defer span.End()

	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote sessions are not configured"})
		return
	}

	var opts tradequote.SessionOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if opts.HopIndex < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hop_index must not be negative"})
		return
	}

	engine, err := h.sessions.Create(ctx, opts)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("trade_id", engine.Snapshot().TradeID))

	c.JSON(http.StatusCreated, engine.Snapshot())
}

// UpdateSessionInputs godoc
// @Summary      Update session inputs
// @Description  Replaces the session's quote inputs; older in-flight answers are discarded and polling restarts
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path  string        true  "Trade id"
// @Param        request  body  QuoteRequest  true  "Quote inputs"
// @Success      202  {object}  QuoteSetView
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/sessions/{id}/inputs [put]
func (h *Handler) UpdateSessionInputs(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-session-inputs")
	defer span.End()

	engine, ok := h.session(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := h.inputs(ctx, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.Update(ctx, in); err != nil {
		c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, newQuoteSetView(engine.Quotes()))
}

// GetSessionQuotes godoc
// @Summary      Current session quotes
// @Description  Returns the session's settled answers best first and the active quote
// @Tags         sessions
// @Produce      json
// @Param        id  path  string  true  "Trade id"
// @Success      200  {object}  QuoteSetView
// @Failure      404  {object}  map[string]string
// @Router       /api/sessions/{id}/quotes [get]
func (h *Handler) GetSessionQuotes(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-session-quotes")
	defer span.End()

	engine, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newQuoteSetView(engine.Quotes()))
}

// SelectSessionQuote godoc
// @Summary      Select a quote
// @Description  Makes a swapper's current quote the active one
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "Trade id"
// @Param        request  body  selectRequest  true  "Swapper to select"
// @Success      200  {object}  swapper.ApiQuote
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/sessions/{id}/select [post]
func (h *Handler) SelectSessionQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.select-session-quote")
	defer span.End()

	engine, ok := h.session(c)
	if !ok {
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("swapper", req.SwapperName))

	quote, err := engine.SelectQuote(ctx, req.SwapperName)
	if err != nil {
		c.JSON(sessionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// CloseSession godoc
// @Summary      Close a quote session
// @Description  Stops polling and forgets the session; the execution store keeps the trade's state
// @Tags         sessions
// @Param        id  path  string  true  "Trade id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/sessions/{id} [delete]
func (h *Handler) CloseSession(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.close-session")
	defer span.End()

	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote sessions are not configured"})
		return
	}
	if err := h.sessions.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamSession godoc
// @Summary      Stream session quotes
// @Description  Upgrades to a websocket that receives a QuoteSetView on every change
// @Tags         sessions
// @Param        id  path  string  true  "Trade id"
// @Success      101
// @Failure      404  {object}  map[string]string
// @Router       /api/sessions/{id}/stream [get]
func (h *Handler) StreamSession(c *gin.Context) {
	engine, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		return
	}
	defer conn.Close()

	log := logger.GetLogger().WithComponent("handler").WithField("trade_id", engine.Snapshot().TradeID)
	updates, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	// The read loop only watches for the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case set, open := <-updates:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(streamWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(newQuoteSetView(set)); err != nil {
				log.WithError(err).Debug("quote stream write failed")
				return
			}
		}
	}
}

func (h *Handler) session(c *gin.Context) (*tradequote.Engine, bool) {
	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote sessions are not configured"})
		return nil, false
	}
	engine, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return engine, true
}

func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, tradequote.ErrQuotingNotPermitted),
		errors.Is(err, tradequote.ErrSelectionSuperseded):
		return http.StatusConflict
	case errors.Is(err, tradequote.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, tradequote.ErrEngineClosed):
		return http.StatusGone
	case errors.Is(err, tradequote.ErrMissingSellAccountNumber):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
