package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/http/response"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/flow"
	"github.com/yungbote/ehon-backend/internal/observability"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type fakeSessions struct {
	views  map[string]flow.View
	events []flow.Event
	fireFn func(ev flow.Event) (flow.View, error)
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{views: map[string]flow.View{
		"s1": {SessionID: "s1", State: flow.StateMain, Allowed: flow.Allowed(flow.StateMain)},
	}}
}

func (f *fakeSessions) Create(context.Context) (flow.View, error) {
	v := flow.View{SessionID: "new", State: flow.StateMain}
	f.views["new"] = v
	return v, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (flow.View, error) {
	v, ok := f.views[id]
	if !ok {
		return flow.View{}, fmt.Errorf("%w: %s", flow.ErrSessionNotFound, id)
	}
	return v, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	if _, ok := f.views[id]; !ok {
		return fmt.Errorf("%w: %s", flow.ErrSessionNotFound, id)
	}
	delete(f.views, id)
	return nil
}

func (f *fakeSessions) Fire(_ context.Context, id string, ev flow.Event) (flow.View, error) {
	if _, ok := f.views[id]; !ok {
		return flow.View{}, fmt.Errorf("%w: %s", flow.ErrSessionNotFound, id)
	}
	f.events = append(f.events, ev)
	if f.fireFn != nil {
		return f.fireFn(ev)
	}
	return f.views[id], nil
}

func newTestRouter(sessions SessionService, books BookFinder, m *observability.Metrics, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sh := NewSessionHandler(logger.Nop(), sessions, m, maxUpload)
	bh := NewBookHandler(logger.Nop(), books)
	r.POST("/api/sessions", sh.Create)
	r.GET("/api/sessions/:id", sh.Get)
	r.DELETE("/api/sessions/:id", sh.Delete)
	r.POST("/api/sessions/:id/events", sh.Fire)
	r.POST("/api/sessions/:id/image", sh.Upload)
	r.GET("/api/books/:id", bh.Get)
	return r
}

func do(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error.Code
}

type fakeBooks map[storybook.BookID][]storybook.StoryRecord

func (f fakeBooks) FindByIdentifier(_ context.Context, id storybook.BookID) ([]storybook.StoryRecord, error) {
	return f[id], nil
}

func TestSessionLifecycle(t *testing.T) {
	sessions := newFakeSessions()
	r := newTestRouter(sessions, fakeBooks{}, nil, 0)

	rec := do(r, http.MethodPost, "/api/sessions", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got=%d want=%d", rec.Code, http.StatusCreated)
	}
	if rec := do(r, http.MethodGet, "/api/sessions/new", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if rec := do(r, http.MethodDelete, "/api/sessions/new", nil, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got=%d want=%d", rec.Code, http.StatusNoContent)
	}
	rec = do(r, http.MethodGet, "/api/sessions/new", nil, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "session_not_found" {
		t.Fatalf("get deleted: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestFireDecodesEvent(t *testing.T) {
	sessions := newFakeSessions()
	m := observability.NewMetrics()
	sessions.fireFn = func(ev flow.Event) (flow.View, error) {
		return flow.View{SessionID: "s1", State: flow.StateResult}, nil
	}
	r := newTestRouter(sessions, fakeBooks{}, m, 0)

	body := []byte(`{"type":"next","choice":2,"answers":[{"question":"q","main":"a"}]}`)
	rec := do(r, http.MethodPost, "/api/sessions/s1/events", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("fire: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(sessions.events) != 1 {
		t.Fatalf("events: got=%d want=1", len(sessions.events))
	}
	ev := sessions.events[0]
	if ev.Type != flow.EventNext || ev.Choice == nil || *ev.Choice != 2 || len(ev.Answers) != 1 {
		t.Fatalf("event decoded wrong: %+v", ev)
	}
	if got := m.FlowEventCount("next", "ok"); got != 1 {
		t.Fatalf("flow metric: got=%v want=1", got)
	}
}

func TestFireRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed json", `{"type":`, http.StatusBadRequest, "invalid_request"},
		{"unknown event", `{"type":"fly"}`, http.StatusBadRequest, "invalid_request"},
		{"upload via json", `{"type":"upload"}`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := newFakeSessions()
			r := newTestRouter(sessions, fakeBooks{}, nil, 0)
			rec := do(r, http.MethodPost, "/api/sessions/s1/events", []byte(tc.body), "application/json")
			if rec.Code != tc.want || errorCode(t, rec) != tc.code {
				t.Fatalf("got=%d body=%s want=%d %s", rec.Code, rec.Body.String(), tc.want, tc.code)
			}
			if len(sessions.events) != 0 {
				t.Fatalf("event should not reach the service")
			}
		})
	}
}

func TestFireMapsInvalidTransition(t *testing.T) {
	sessions := newFakeSessions()
	sessions.fireFn = func(ev flow.Event) (flow.View, error) {
		_, err := flow.Target(flow.StateMain, ev.Type)
		return flow.View{}, err
	}
	r := newTestRouter(sessions, fakeBooks{}, nil, 0)
	rec := do(r, http.MethodPost, "/api/sessions/s1/events", []byte(`{"type":"home"}`), "application/json")
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "invalid_transition" {
		t.Fatalf("got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func multipartImage(t *testing.T, field string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "photo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes(), w.FormDataContentType()
}

func TestUploadFiresUploadEvent(t *testing.T) {
	sessions := newFakeSessions()
	r := newTestRouter(sessions, fakeBooks{}, nil, 0)
	body, ct := multipartImage(t, "image", []byte("not really a png"))

	rec := do(r, http.MethodPost, "/api/sessions/s1/image", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(sessions.events) != 1 || sessions.events[0].Type != flow.EventUpload {
		t.Fatalf("upload event missing: %+v", sessions.events)
	}
	if string(sessions.events[0].Image) != "not really a png" {
		t.Fatalf("image bytes: got=%q", sessions.events[0].Image)
	}
}

func TestUploadRejectsMissingAndOversizedImages(t *testing.T) {
	sessions := newFakeSessions()
	r := newTestRouter(sessions, fakeBooks{}, nil, 1024)

	body, ct := multipartImage(t, "photo", []byte("x"))
	rec := do(r, http.MethodPost, "/api/sessions/s1/image", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing field: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	body, ct = multipartImage(t, "image", bytes.Repeat([]byte("x"), 4096))
	rec = do(r, http.MethodPost, "/api/sessions/s1/image", body, ct)
	if rec.Code != http.StatusRequestEntityTooLarge || errorCode(t, rec) != "upload_too_large" {
		t.Fatalf("oversized: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(sessions.events) != 0 {
		t.Fatalf("rejected uploads must not fire events")
	}
}

func TestBookLookup(t *testing.T) {
	books := fakeBooks{"Ehon-00001": {
		{BookID: "Ehon-00001", PageNumber: 1, PageText: "はじまり"},
		{BookID: "Ehon-00001", PageNumber: 2, PageText: "おわり"},
	}}
	r := newTestRouter(newFakeSessions(), books, nil, 0)

	rec := do(r, http.MethodGet, "/api/books/Ehon-00001", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("found: got=%d", rec.Code)
	}
	var book storybook.Book
	if err := json.Unmarshal(rec.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if book.ID != "Ehon-00001" || len(book.Pages) != 2 || book.Pages[1].PageText != "おわり" {
		t.Fatalf("book: got=%+v", book)
	}

	rec = do(r, http.MethodGet, "/api/books/Ehon-99999", nil, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "book_not_found" {
		t.Fatalf("miss: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodGet, "/api/books/book-1", nil, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_book_id") {
		t.Fatalf("malformed: got=%d body=%s", rec.Code, rec.Body.String())
	}
}
