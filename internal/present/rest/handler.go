package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/present/rest/presenter"
	"github.com/newscraft/capi-ingest/internal/usecase"
)

// RealtimeSource fans ingest events out to one websocket client. Implemented
// by the redis-backed signal service.
type RealtimeSource interface {
	Realtime(ctx context.Context, input <-chan []string, output chan<- domain.IngestEvent)
}

type Handler struct {
	keyHeader string
	ingest    *usecase.IngestUsecase
	query     *usecase.QueryUsecase
	signal    RealtimeSource
}

func NewHandler(
	keyHeader string,
	ingest *usecase.IngestUsecase,
	query *usecase.QueryUsecase,
	signal RealtimeSource,
) *Handler {
	return &Handler{
		keyHeader: keyHeader,
		ingest:    ingest,
		query:     query,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhook/collections", h.handleCollectionWebhook)
	e.GET("/api/v1/collections/:id", h.handleGetCollection)
	e.GET("/healthz", h.handleHealth)
	e.GET("/realtime", h.handleRealtime)
}

type ackItem struct {
	EventID   string `json:"eventId"`
	HasErrors bool   `json:"hasErrors"`
	Message   string `json:"message"`
}

type ackResponse struct {
	Responses []ackItem `json:"responses"`
}

// handleCollectionWebhook accepts one CAPI collection notification. The
// acknowledgment contract is fixed: HTTP 200 with a responses envelope, errors
// signaled only through hasErrors. A body that does not parse at all is the
// one pre-contract case and yields 400.
func (h *Handler) handleCollectionWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	rawPayload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var notif domain.CollectionNotification
	if err := json.Unmarshal(rawPayload, &notif); err != nil {
		return presenter.BadRequest(c, err)
	}

	presentedKey := c.Request().Header.Get(h.keyHeader)

	result := h.ingest.Process(ctx, rawPayload, notif, presentedKey)

	slog.InfoContext(ctx, "notification processed",
		slog.String("collectionId", notif.CAPIID),
		slog.String("eventId", result.EventID),
		slog.String("outcome", result.Outcome.String()),
		slog.Int("articles", result.ArticleCount),
		slog.String("module", "webhook"),
	)

	return presenter.OK(c, ackResponse{
		Responses: []ackItem{{
			EventID:   result.EventID,
			HasErrors: result.HasErrors,
			Message:   result.Message,
		}},
	})
}

func (h *Handler) handleGetCollection(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return presenter.BadRequestMessage(c, "collection id is required")
	}

	record, err := h.query.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "collection not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, record)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
}

// handleRealtime streams ingest events to a websocket client, filtered by the
// collection ids the client subscribes to.
func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.IngestEvent)

	go h.signal.Realtime(ctx, input, output)

	// Buffered so the reader can always record the disconnect even after the
	// write loop below has already returned.
	quit := make(chan struct{}, 1)

	// The reader goroutine owns input: it is the only sender and closes it on
	// exit, so a frame that parses after the write loop ends cannot hit a
	// closed channel.
	go func() {
		defer close(input)
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				select {
				case quit <- struct{}{}:
				default:
				}
				break
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Collections:
				case <-ctx.Done():
					return
				}
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
