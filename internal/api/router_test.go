package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/ticket-generator/internal/api/handlers"
	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/session"
	"github.com/St1cky1/ticket-generator/internal/usecase"
	"github.com/St1cky1/ticket-generator/internal/view"
	"github.com/prometheus/client_golang/prometheus"
)

type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

type formResponse struct {
	SessionID string             `json:"session_id"`
	State     string             `json:"state"`
	Outcome   string             `json:"outcome"`
	Ticket    *entity.TicketView `json:"ticket"`
	Page      view.Snapshot      `json:"page"`
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

type testClient struct {
	t        *testing.T
	router   http.Handler
	sessions *session.Registry
	cookie   *http.Cookie
}

func newTestClient(t *testing.T, maxRequestBytes int64) *testClient {
	return newCappedTestClient(t, maxRequestBytes, 100)
}

func newCappedTestClient(t *testing.T, maxRequestBytes int64, maxSessions int) *testClient {
	t.Helper()

	reg := prometheus.NewRegistry()
	sessions := session.NewRegistry(session.FormDeps{
		IDs:   usecase.NewTicketIDGenerator(fixedRand(42)),
		Clock: clock.Fake(time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)),
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, maxSessions)

	return &testClient{
		t:        t,
		sessions: sessions,
		router: NewRouter(RouterConfig{
			Sessions:        sessions,
			Log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
			Registerer:      reg,
			Gatherer:        reg,
			MaxRequestBytes: maxRequestBytes,
		}),
	}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	req.Header.Set("Accept", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == handlers.SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *testClient) upload(source, name, contentType string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		c.t.Fatalf("Expected no error creating part, got %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/form/avatar?source="+source, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *testClient) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func decodeForm(t *testing.T, rec *httptest.ResponseRecorder) formResponse {
	t.Helper()

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp formResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected JSON body, got %v", err)
	}
	return resp
}

func pngData(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 6, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Expected no error encoding png, got %v", err)
	}
	return buf.Bytes()
}

func adaForm() url.Values {
	return url.Values{
		entity.FieldFullName:  {"Ada Lovelace"},
		entity.FieldEmailAddr: {"ada@example.com"},
		entity.FieldUsername:  {"ada"},
	}
}

func TestPageCreatesSession(t *testing.T) {
	c := newTestClient(t, 8<<20)

	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("Expected session cookie to be set")
	}
	if !strings.Contains(rec.Body.String(), "Drag and drop or click to upload") {
		t.Error("Expected upload prompt on page")
	}

	// Повторный запрос с cookie не создает новую сессию
	first := c.cookie.Value
	resp := decodeForm(t, c.do(httptest.NewRequest(http.MethodGet, "/api/v1/form", nil)))
	if resp.SessionID != first {
		t.Errorf("Expected session %s, got %s", first, resp.SessionID)
	}
	if resp.State != string(usecase.StateEditing) {
		t.Errorf("Expected editing state, got %s", resp.State)
	}
}

func TestGenerateTicket(t *testing.T) {
	c := newTestClient(t, 8<<20)

	resp := decodeForm(t, c.upload("picker", "ada.png", "image/png", pngData(t)))
	if resp.Outcome != "ok" {
		t.Fatalf("Expected ok outcome, got %s", resp.Outcome)
	}
	if !strings.HasPrefix(resp.Page.Preview.Src, "data:image/png;base64,") {
		t.Errorf("Expected preview data URL, got %.40q", resp.Page.Preview.Src)
	}
	if resp.Page.Preview.Hidden || !resp.Page.Upload.ControlsActive || resp.Page.Upload.IconVisible {
		t.Errorf("Expected preview shown with controls, got %+v / %+v", resp.Page.Preview, resp.Page.Upload)
	}
	if resp.Page.Preview.Width != 6 || resp.Page.Preview.Height != 3 {
		t.Errorf("Expected 6x3 preview, got %dx%d", resp.Page.Preview.Width, resp.Page.Preview.Height)
	}

	resp = decodeForm(t, c.postForm("/api/v1/form/submit", adaForm()))
	if resp.Outcome != "ok" {
		t.Fatalf("Expected ok outcome, got %s", resp.Outcome)
	}
	if resp.State != string(usecase.StateConfirmed) {
		t.Errorf("Expected confirmed state, got %s", resp.State)
	}
	if resp.Ticket == nil || resp.Ticket.TicketNumber != "#000042" {
		t.Fatalf("Expected ticket #000042, got %+v", resp.Ticket)
	}

	conf := resp.Page.Confirmation
	if conf.DisplayName != "Ada Lovelace" || conf.BadgeName != "Ada Lovelace" {
		t.Errorf("Expected both name slots filled, got %+v", conf)
	}
	if conf.Month != "October" || conf.Day != "17" || conf.Year != "2026" {
		t.Errorf("Expected October 17 2026, got %s %s %s", conf.Month, conf.Day, conf.Year)
	}
	if !resp.Page.FormHidden || !resp.Page.DescriptionHidden || !resp.Page.ConfirmationActive {
		t.Error("Expected form hidden and confirmation active")
	}
	if !strings.HasPrefix(resp.Page.Avatar.Src, "data:image/png;base64,") {
		t.Error("Expected avatar rendered on ticket")
	}

	rec := c.postForm("/api/v1/form/submit", adaForm())
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409 on second submit, got %d", rec.Code)
	}
	var errResp errorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp.Error.Code != "already_confirmed" {
		t.Errorf("Expected already_confirmed, got %s", errResp.Error.Code)
	}
	if errResp.Error.RequestID == "" {
		t.Error("Expected request_id in error envelope")
	}
}

func TestSubmitWithoutAvatar(t *testing.T) {
	c := newTestClient(t, 8<<20)

	resp := decodeForm(t, c.postForm("/api/v1/form/submit", adaForm()))
	if resp.Outcome != "invalid_type" {
		t.Errorf("Expected invalid_type outcome, got %s", resp.Outcome)
	}
	if resp.Page.Error.Hidden || resp.Page.Error.Text != entity.MessageInvalidType {
		t.Errorf("Expected invalid type message, got %+v", resp.Page.Error)
	}
	if resp.State != string(usecase.StateEditing) {
		t.Errorf("Expected editing state, got %s", resp.State)
	}
}

func TestSubmitBadEmail(t *testing.T) {
	c := newTestClient(t, 8<<20)
	decodeForm(t, c.upload("drop", "ada.png", "image/png", pngData(t)))

	values := adaForm()
	values.Set(entity.FieldEmailAddr, "not-an-email")
	resp := decodeForm(t, c.postForm("/api/v1/form/submit", values))

	if resp.Outcome != "fields_invalid" {
		t.Errorf("Expected fields_invalid outcome, got %s", resp.Outcome)
	}
	email := resp.Page.Fields[entity.FieldEmailAddr]
	if !email.Visible || email.Message != entity.MessageInvalidEmail || !email.Outlined {
		t.Errorf("Expected email indicator, got %+v", email)
	}
	if resp.Page.Confirmation.TicketNumber != "" {
		t.Errorf("Expected empty ticket number, got %q", resp.Page.Confirmation.TicketNumber)
	}
}

func TestEditFieldsLiveValidation(t *testing.T) {
	c := newTestClient(t, 8<<20)

	resp := decodeForm(t, c.postForm("/api/v1/form/fields", url.Values{entity.FieldFullName: {"   "}}))
	name := resp.Page.Fields[entity.FieldFullName]
	if !name.Visible || name.Message != entity.MessageRequired || name.FontSize != view.RequiredFontSize {
		t.Errorf("Expected required indicator, got %+v", name)
	}

	resp = decodeForm(t, c.postForm("/api/v1/form/fields", url.Values{entity.FieldFullName: {"Ada"}}))
	if resp.Page.Fields[entity.FieldFullName].Visible {
		t.Error("Expected indicator hidden after valid input")
	}

	rec := c.postForm("/api/v1/form/fields", url.Values{"nickname": {"x"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for untracked field, got %d", rec.Code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	c := newTestClient(t, 8<<20)

	resp := decodeForm(t, c.upload("picker", "notes.txt", "text/plain", []byte("hello")))
	if resp.Outcome != "invalid_type" {
		t.Errorf("Expected invalid_type outcome, got %s", resp.Outcome)
	}
	if resp.Page.Error.Text != entity.MessageInvalidType {
		t.Errorf("Expected invalid type message, got %q", resp.Page.Error.Text)
	}
	if !resp.Page.Preview.Hidden {
		t.Error("Expected preview to stay hidden")
	}
}

func TestUploadTooLargeAvatar(t *testing.T) {
	c := newTestClient(t, 8<<20)

	data := make([]byte, entity.MaxAvatarSize+1)
	resp := decodeForm(t, c.upload("picker", "huge.png", "image/png", data))
	if resp.Outcome != "too_large" {
		t.Errorf("Expected too_large outcome, got %s", resp.Outcome)
	}
	if resp.Page.Error.Text != entity.MessageTooLarge {
		t.Errorf("Expected too large message, got %q", resp.Page.Error.Text)
	}
}

func TestUploadOverRequestCap(t *testing.T) {
	c := newTestClient(t, 1024)

	rec := c.upload("picker", "big.png", "image/png", make([]byte, 4096))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d", rec.Code)
	}
	var errResp errorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp.Error.Code != "payload_too_large" {
		t.Errorf("Expected payload_too_large, got %s", errResp.Error.Code)
	}
}

func TestUploadEmptySelectionAndRemove(t *testing.T) {
	c := newTestClient(t, 8<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/form/avatar?source=drop", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp := decodeForm(t, c.do(req))
	if resp.Outcome != "empty_selection" || resp.Page.Error.Text != entity.MessageEmptySelection {
		t.Errorf("Expected empty selection message, got %s / %q", resp.Outcome, resp.Page.Error.Text)
	}

	decodeForm(t, c.upload("picker", "ada.png", "image/png", pngData(t)))
	resp = decodeForm(t, c.postForm("/api/v1/form/avatar/remove", nil))

	if !resp.Page.Preview.Hidden || resp.Page.Preview.Src != "" {
		t.Errorf("Expected preview cleared, got %+v", resp.Page.Preview)
	}
	if resp.Page.Upload.Label != view.UploadPrompt || !resp.Page.Upload.IconVisible || resp.Page.Upload.ControlsActive {
		t.Errorf("Expected upload area restored, got %+v", resp.Page.Upload)
	}

	resp = decodeForm(t, c.postForm("/api/v1/form/submit", adaForm()))
	if resp.Outcome != "invalid_type" {
		t.Errorf("Expected invalid_type after remove, got %s", resp.Outcome)
	}
}

func TestUploadUnknownSource(t *testing.T) {
	c := newTestClient(t, 8<<20)

	rec := c.upload("camera", "ada.png", "image/png", pngData(t))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestBrowserFormPostRedirects(t *testing.T) {
	c := newTestClient(t, 8<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/form/avatar/change", nil)
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("Expected redirect to /, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	c := newTestClient(t, 8<<20)
	c.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := c.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/healthz"`) {
		t.Error("Expected /healthz in request metrics")
	}
}

func TestCookielessUploadsStayWithinSessionCap(t *testing.T) {
	c := newCappedTestClient(t, 8<<20, 5)
	data := pngData(t)

	for range 20 {
		c.cookie = nil
		resp := decodeForm(t, c.upload("picker", "ada.png", "image/png", data))
		if resp.Outcome != "ok" {
			t.Fatalf("Expected ok outcome, got %s", resp.Outcome)
		}
	}

	if got := c.sessions.Len(); got != 5 {
		t.Errorf("Expected session cap of 5, got %d", got)
	}
}

func TestDragAndClickRoutes(t *testing.T) {
	c := newTestClient(t, 8<<20)

	resp := decodeForm(t, c.postForm("/api/v1/form/drag?type=dragenter", nil))
	if !resp.Page.Upload.DragOver {
		t.Errorf("Expected drop zone highlighted after dragenter")
	}
	resp = decodeForm(t, c.postForm("/api/v1/form/drag?type=dragleave", nil))
	if resp.Page.Upload.DragOver {
		t.Errorf("Expected highlight cleared after dragleave")
	}

	rec := c.postForm("/api/v1/form/drag?type=drop", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for drop without upload, got %d", rec.Code)
	}

	resp = decodeForm(t, c.postForm("/api/v1/form/click", nil))
	if !resp.Page.Upload.PickerOpen {
		t.Errorf("Expected picker open after click")
	}
}
