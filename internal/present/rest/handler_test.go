package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/usecase"
)

// --- mocks ---

type mockCollections struct {
	records map[string]*domain.CollectionRecord
}

func (m *mockCollections) Get(ctx context.Context, id string) (*domain.CollectionRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "collection"}
	}
	return record, nil
}

func (m *mockCollections) Upsert(ctx context.Context, record *domain.CollectionRecord) error {
	m.records[record.CollectionID] = record
	return nil
}

func (m *mockCollections) WritePlaceholder(ctx context.Context, id, eventID, placeholderJSON string) (bool, error) {
	_, ok := m.records[id]
	return ok, nil
}

type mockAudit struct {
	entries int
}

func (m *mockAudit) Append(ctx context.Context, entry domain.AuditEntry) error {
	m.entries++
	return nil
}

type mockKeys struct{}

func (m *mockKeys) Verify(ctx context.Context, keyName, presented string) (bool, error) {
	return presented == "sekret", nil
}

type mockContent struct {
	calls int
}

func (m *mockContent) FetchCollection(ctx context.Context, id string) (*domain.CollectionDocument, []byte, error) {
	m.calls++
	return &domain.CollectionDocument{
		ID: id,
		Content: domain.CollectionContent{
			Headline: "Top stories",
			Related:  domain.RelatedIDs{Primary: []string{"a"}},
			References: map[string]domain.Reference{
				"a": {Headline: "First"},
			},
		},
	}, []byte(`{"id":"` + id + `"}`), nil
}

type mockEvents struct{}

func (m *mockEvents) Publish(ctx context.Context, event domain.IngestEvent) error { return nil }

// fakeRealtime echoes one event per listened collection id and reports when
// the fanout loop has shut down.
type fakeRealtime struct {
	stopped chan struct{}
}

func (f *fakeRealtime) Realtime(ctx context.Context, input <-chan []string, output chan<- domain.IngestEvent) {
	defer close(f.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case ids, ok := <-input:
			if !ok {
				return
			}
			for _, id := range ids {
				select {
				case output <- domain.IngestEvent{CollectionID: id, Outcome: "ingested"}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// --- fixtures ---

func newTestServer(t *testing.T) (*echo.Echo, *mockCollections, *mockAudit, *mockContent) {
	t.Helper()

	collections := &mockCollections{records: map[string]*domain.CollectionRecord{}}
	audit := &mockAudit{}
	content := &mockContent{}

	ingest := usecase.NewIngestUsecase(
		collections, audit, &mockKeys{}, content, &mockEvents{},
		"capi-webhook-uat", true,
	)
	query := usecase.NewQueryUsecase(collections)

	h := NewHandler("X-Api-Key", ingest, query, nil)

	e := echo.New()
	h.RegisterRoutes(e)

	return e, collections, audit, content
}

func postNotification(e *echo.Echo, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/collections", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestWebhookAcknowledgesActiveNotification(t *testing.T) {
	e, collections, audit, content := newTestServer(t)

	body := `{"capiId":"C1","status":"active","draft":false,"date":{"live":"2020-01-01T00:00:00Z"}}`
	res := postNotification(e, body, "sekret")

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var ack ackResponse
	if err := json.Unmarshal(res.Body.Bytes(), &ack); err != nil {
		t.Fatalf("invalid ack body: %v", err)
	}
	if len(ack.Responses) != 1 {
		t.Fatalf("expected one response item got %d", len(ack.Responses))
	}
	if ack.Responses[0].HasErrors {
		t.Fatalf("unexpected error flag: %s", ack.Responses[0].Message)
	}
	if ack.Responses[0].EventID == "" {
		t.Fatalf("expected a generated event id")
	}

	if content.calls != 1 {
		t.Fatalf("expected one upstream fetch got %d", content.calls)
	}
	if collections.records["C1"] == nil {
		t.Fatalf("expected a persisted record")
	}
	if audit.entries != 1 {
		t.Fatalf("expected one audit row got %d", audit.entries)
	}
}

func TestWebhookInvalidKeyStillAcknowledged(t *testing.T) {
	e, collections, audit, content := newTestServer(t)

	body := `{"capiId":"C1","status":"active","draft":false,"date":{"live":"2020-01-01T00:00:00Z"}}`
	res := postNotification(e, body, "wrong")

	if res.Code != http.StatusOK {
		t.Fatalf("auth failure still acknowledges with 200, got %d", res.Code)
	}

	var ack ackResponse
	if err := json.Unmarshal(res.Body.Bytes(), &ack); err != nil {
		t.Fatalf("invalid ack body: %v", err)
	}
	if ack.Responses[0].Message == "" {
		t.Fatalf("expected a non-empty message")
	}

	if content.calls != 0 {
		t.Fatalf("invalid key must not fetch")
	}
	if len(collections.records) != 0 {
		t.Fatalf("invalid key must not write records")
	}
	if audit.entries != 1 {
		t.Fatalf("expected exactly one audit row got %d", audit.entries)
	}
}

func TestWebhookRejectsUnparseableBody(t *testing.T) {
	e, _, audit, _ := newTestServer(t)

	res := postNotification(e, `{not json`, "sekret")

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable body got %d", res.Code)
	}
	if audit.entries != 0 {
		t.Fatalf("pre-contract rejection must not write audit rows")
	}
}

func TestGetCollection(t *testing.T) {
	e, collections, _, _ := newTestServer(t)
	collections.records["C1"] = &domain.CollectionRecord{
		CollectionID: "C1",
		Headline:     "Top stories",
		ArticleCount: 2,
		UpdatedAt:    time.Now(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections/C1", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var record domain.CollectionRecord
	if err := json.Unmarshal(res.Body.Bytes(), &record); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if record.Headline != "Top stories" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestGetCollectionNotFound(t *testing.T) {
	e, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections/nope", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func dialRealtime(t *testing.T, source RealtimeSource) (*websocket.Conn, func()) {
	t.Helper()

	collections := &mockCollections{records: map[string]*domain.CollectionRecord{}}
	ingest := usecase.NewIngestUsecase(
		collections, &mockAudit{}, &mockKeys{}, &mockContent{}, &mockEvents{},
		"capi-webhook-uat", true,
	)
	h := NewHandler("X-Api-Key", ingest, usecase.NewQueryUsecase(collections), source)

	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	return ws, func() {
		ws.Close()
		srv.Close()
	}
}

func TestRealtimeStreamsListenedCollections(t *testing.T) {
	source := &fakeRealtime{stopped: make(chan struct{})}
	ws, teardown := dialRealtime(t, source)
	defer teardown()

	// Heartbeats are ignored.
	if err := ws.WriteJSON(map[string]string{"type": "h"}); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}

	if err := ws.WriteJSON(realtimeRequest{Type: "listen", Collections: []string{"C1"}}); err != nil {
		t.Fatalf("write listen: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event domain.IngestEvent
	if err := ws.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.CollectionID != "C1" {
		t.Fatalf("expected event for C1 got %q", event.CollectionID)
	}

	// A later listen frame, after events have already been streamed, still
	// reaches the fanout loop.
	if err := ws.WriteJSON(realtimeRequest{Type: "listen", Collections: []string{"C2"}}); err != nil {
		t.Fatalf("write second listen: %v", err)
	}
	if err := ws.ReadJSON(&event); err != nil {
		t.Fatalf("read second event: %v", err)
	}
	if event.CollectionID != "C2" {
		t.Fatalf("expected event for C2 got %q", event.CollectionID)
	}
}

func TestRealtimeShutsDownOnClientDisconnect(t *testing.T) {
	source := &fakeRealtime{stopped: make(chan struct{})}
	ws, teardown := dialRealtime(t, source)
	defer teardown()

	if err := ws.WriteJSON(realtimeRequest{Type: "listen", Collections: []string{"C1"}}); err != nil {
		t.Fatalf("write listen: %v", err)
	}

	// Drop the connection without reading the pending event, so the server
	// side fails mid-write. The handler must still unwind the fanout loop.
	ws.Close()

	select {
	case <-source.stopped:
	case <-time.After(5 * time.Second):
		t.Fatalf("fanout loop did not stop after the client disconnected")
	}
}
