package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
	"github.com/GriffinCanCode/PostGen/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/generator"
)

const (
	streamRequestTimeout = 30 * time.Second
	streamWriteTimeout   = 10 * time.Second
	streamMaxMessage     = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as CORS
	},
}

// Stream message types (server to client).
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// StreamEvent is one server message on the generation stream.
type StreamEvent struct {
	Type   string                 `json:"type"`
	Stage  generator.Stage        `json:"stage,omitempty"`
	Result *post.GenerationResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Status int                    `json:"status,omitempty"`
}

// Stream runs one generation over a WebSocket. The client sends a single
// GenerationRequest; the server answers with progress events followed by
// a result or error event and closes the connection.
func (h *Handlers) Stream(c *gin.Context) {
	log := logging.FromContext(c.Request.Context(), h.logger)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.StreamConnections.Inc()
		defer h.metrics.StreamConnections.Dec()
	}

	conn.SetReadLimit(streamMaxMessage)
	conn.SetReadDeadline(time.Now().Add(streamRequestTimeout))

	var req post.GenerationRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Debug("websocket read failed", zap.Error(err))
		h.sendStreamError(conn, errInvalidBody)
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// the client going away cancels the run
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	res, err := h.generator.Generate(ctx, req, func(stage generator.Stage) {
		if err := h.send(conn, StreamEvent{Type: EventProgress, Stage: stage}); err != nil {
			log.Debug("websocket progress write failed", zap.Error(err))
		}
	})
	if err != nil {
		h.logFailure(c, "stream generate", err)
		h.sendStreamError(conn, err)
		return
	}

	if err := h.send(conn, StreamEvent{Type: EventResult, Result: res}); err != nil {
		log.Debug("websocket result write failed", zap.Error(err))
		return
	}
	h.close(conn)
}

func (h *Handlers) send(conn *websocket.Conn, event StreamEvent) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(event)
}

func (h *Handlers) sendStreamError(conn *websocket.Conn, err error) {
	status, msg := statusFor(err)
	if h.send(conn, StreamEvent{Type: EventError, Error: msg, Status: status}) == nil {
		h.close(conn)
	}
}

func (h *Handlers) close(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteTimeout))
}
