package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/http/response"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/flow"
	"github.com/yungbote/ehon-backend/internal/observability"
	"github.com/yungbote/ehon-backend/internal/platform/apierr"
	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

const DefaultMaxUploadBytes int64 = 10 << 20

type SessionService interface {
	Create(ctx context.Context) (flow.View, error)
	Get(ctx context.Context, id string) (flow.View, error)
	Delete(ctx context.Context, id string) error
	Fire(ctx context.Context, id string, ev flow.Event) (flow.View, error)
}

type SessionHandler struct {
	log       *logger.Logger
	sessions  SessionService
	metrics   *observability.Metrics
	maxUpload int64
}

func NewSessionHandler(log *logger.Logger, sessions SessionService, metrics *observability.Metrics, maxUpload int64) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &SessionHandler{
		log:       log.With("handler", "SessionHandler"),
		sessions:  sessions,
		metrics:   metrics,
		maxUpload: maxUpload,
	}
}

type eventRequest struct {
	Type    string             `json:"type"`
	Choice  *int               `json:"choice"`
	Theme   string             `json:"theme"`
	Answers []storybook.Answer `json:"answers"`
	BookID  string             `json:"book_id"`
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	view, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessions.Get(c.Request.Context(), h.sessionID(c))
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), h.sessionID(c)); err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sessions/:id/events
func (h *SessionHandler) Fire(c *gin.Context) {
	id := h.sessionID(c)
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	ev := flow.EventType(strings.TrimSpace(req.Type))
	switch {
	case !flow.KnownEvent(ev):
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("unknown event %q", req.Type)))
		return
	case ev == flow.EventUpload:
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", errors.New("images are sent as multipart to /image")))
		return
	}
	h.fire(c, id, flow.Event{
		Type:    ev,
		Choice:  req.Choice,
		Theme:   req.Theme,
		Answers: req.Answers,
		BookID:  req.BookID,
	})
}

// POST /api/sessions/:id/image
func (h *SessionHandler) Upload(c *gin.Context) {
	id := h.sessionID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(c, h.log, apierr.New(http.StatusRequestEntityTooLarge, "upload_too_large", err))
			return
		}
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("image field: %w", err)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	h.fire(c, id, flow.Event{
		Type:      flow.EventUpload,
		Image:     data,
		ImageMime: fh.Header.Get("Content-Type"),
	})
}

func (h *SessionHandler) fire(c *gin.Context, id string, ev flow.Event) {
	view, err := h.sessions.Fire(c.Request.Context(), id, ev)
	if err != nil {
		h.metrics.ObserveFlowEvent(string(ev.Type), "rejected")
		respondErr(c, h.log, err)
		return
	}
	outcome := outcomeOf(view)
	h.metrics.ObserveFlowEvent(string(ev.Type), outcome)
	if ev.Type == flow.EventNext && view.State == flow.StateResult && outcome == "ok" {
		h.metrics.IncBookPublished()
	}
	response.RespondOK(c, view)
}

func outcomeOf(v flow.View) string {
	switch {
	case v.HasError():
		return "error"
	case len(v.Notices) > 0:
		return "warning"
	default:
		return "ok"
	}
}

// sessionID reads :id and tags the request trace data with it for logging.
func (h *SessionHandler) sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		td.SessionID = id
	}
	return id
}
