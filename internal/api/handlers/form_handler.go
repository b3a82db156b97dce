package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/session"
	"github.com/St1cky1/ticket-generator/internal/usecase"
	"github.com/St1cky1/ticket-generator/internal/view"
)

const (
	SessionCookie   = "ticket_session"
	avatarFormField = "avatar"
	multipartMemory = 1 << 20
	previewWait     = 5 * time.Second
)

type FormHandler struct {
	sessions        *session.Registry
	log             *slog.Logger
	maxRequestBytes int64
}

func NewFormHandler(sessions *session.Registry, log *slog.Logger, maxRequestBytes int64) *FormHandler {
	return &FormHandler{
		sessions:        sessions,
		log:             log,
		maxRequestBytes: maxRequestBytes,
	}
}

type formResponse struct {
	SessionID string              `json:"session_id"`
	State     usecase.State       `json:"state"`
	Outcome   string              `json:"outcome"`
	Fields    []entity.FieldState `json:"fields,omitempty"`
	Ticket    *entity.TicketView  `json:"ticket,omitempty"`
	Page      view.Snapshot       `json:"page"`
}

// Page рендерит страницу генератора
func (h *FormHandler) Page(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, form.Snapshot(), form.Fields()); err != nil {
		h.log.Error("page_render_failed", slog.String("err", err.Error()))
	}
}

func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)
	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(nil)})
}

// UploadAvatar - выбор файла через picker или drop (?source=drop)
func (h *FormHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)

	source := usecase.IntakeSource(r.URL.Query().Get("source"))
	switch source {
	case "":
		source = usecase.SourcePicker
	case usecase.SourcePicker, usecase.SourceDrop:
	default:
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_source", "source must be picker or drop")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteErrorR(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_multipart", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readAvatars(r.MultipartForm.File[avatarFormField])
	if err != nil {
		h.log.Warn("avatar_read_failed", slog.String("err", err.Error()))
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_file", "unable to read uploaded file")
		return
	}

	done, err := form.Intake(source, files)
	waitPreview(r.Context(), done)

	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(err)})
}

func (h *FormHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)
	form.Remove()
	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(nil)})
}

func (h *FormHandler) ChangeAvatar(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)
	form.Change()
	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(nil)})
}

// Drag - подсветка зоны при перетаскивании (?type=dragenter|dragover|dragleave).
// Сам drop с файлом идет через UploadAvatar с source=drop.
func (h *FormHandler) Drag(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)

	typ := usecase.DragEventType(r.URL.Query().Get("type"))
	switch typ {
	case usecase.DragEnter, usecase.DragOver, usecase.DragLeave:
	default:
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_drag_type", "type must be dragenter, dragover or dragleave")
		return
	}

	_, err := form.Drag(&usecase.DragEvent{Type: typ})
	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(err)})
}

// Click - клик по зоне загрузки открывает выбор файла
func (h *FormHandler) Click(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)
	form.ClickZone()
	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(nil)})
}

// EditFields - живая проверка при вводе
func (h *FormHandler) EditFields(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_form", "invalid form data")
		return
	}

	var (
		states []entity.FieldState
		edited int
	)
	for _, f := range form.Fields() {
		if _, ok := r.PostForm[f.Name]; !ok {
			continue
		}
		s, _, err := form.EditField(f.Name, r.PostForm.Get(f.Name))
		if err != nil {
			WriteErrorR(w, r, http.StatusBadRequest, usecase.Outcome(err), err.Error())
			return
		}
		states = s
		edited++
	}
	if edited == 0 {
		WriteErrorR(w, r, http.StatusBadRequest, usecase.Outcome(entity.ErrUnknownField), "no tracked field in request")
		return
	}

	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(nil), Fields: states})
}

// Submit - кнопка "Generate My Ticket"
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form := h.formFor(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		WriteErrorR(w, r, http.StatusBadRequest, "invalid_form", "invalid form data")
		return
	}

	values := make(map[string]string)
	for _, f := range form.Fields() {
		if _, ok := r.PostForm[f.Name]; ok {
			values[f.Name] = r.PostForm.Get(f.Name)
		}
	}

	ticket, ready, err := form.Submit(r.Context(), values)
	if errors.Is(err, entity.ErrAlreadyConfirmed) && wantsJSON(r) {
		WriteErrorR(w, r, http.StatusConflict, usecase.Outcome(err), "ticket already generated for this session")
		return
	}
	waitPreview(r.Context(), ready)

	h.respond(w, r, form, formResponse{Outcome: usecase.Outcome(err), Ticket: ticket})
}

// formFor находит форму по cookie или открывает новую
func (h *FormHandler) formFor(w http.ResponseWriter, r *http.Request) *session.Form {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if form, err := h.sessions.Get(c.Value); err == nil {
			return form
		}
	}

	form := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    form.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return form
}

// respond отдает JSON клиентам API, браузерную форму отправляет обратно на страницу
func (h *FormHandler) respond(w http.ResponseWriter, r *http.Request, form *session.Form, resp formResponse) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	resp.SessionID = form.ID
	resp.State = form.State()
	resp.Page = form.Snapshot()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Warn("response_encode_failed", slog.String("err", err.Error()))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// waitPreview ждет декодирования превью, чтобы ответ уже содержал src
func waitPreview(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(previewWait):
	}
}

func readAvatars(headers []*multipart.FileHeader) ([]*entity.Avatar, error) {
	files := make([]*entity.Avatar, 0, len(headers))
	for _, fh := range headers {
		a := &entity.Avatar{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
		// Данные нужны только файлам, которые пройдут проверку размера
		if fh.Size <= entity.MaxAvatarSize {
			data, err := readFileHeader(fh)
			if err != nil {
				return nil, err
			}
			a.Data = data
		}
		files = append(files, a)
	}
	return files, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, entity.MaxAvatarSize))
}
