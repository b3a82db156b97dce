// Package session собирает логику формы из usecase и области страницы из
// view в одну открытую страницу на посетителя.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/usecase"
	"github.com/St1cky1/ticket-generator/internal/view"
)

// FormDeps - общие зависимости всех сессий формы
type FormDeps struct {
	Fields    []entity.Field
	IDs       *usecase.TicketIDGenerator
	Clock     clock.Clock
	Publisher usecase.TicketPublisher
	Log       *slog.Logger
	Metrics   *usecase.Metrics
}

// Form - одна открытая страница генератора. События обрабатываются по
// одному, как в однопоточном цикле событий браузера.
type Form struct {
	ID string

	mu       sync.Mutex
	page     *view.Page
	values   map[string]string
	lastSeen time.Time

	fields  *usecase.FieldValidator
	intake  *usecase.Intake
	tickets *usecase.TicketService
}

func NewForm(id string, deps FormDeps) *Form {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}

	page := view.NewPage()
	store := usecase.NewAvatarStore(page)
	preview := usecase.NewPreviewRenderer()
	fields := usecase.NewFieldValidator(page, deps.Fields...)

	return &Form{
		ID:       id,
		page:     page,
		values:   make(map[string]string),
		lastSeen: deps.Clock.Now(),
		fields:   fields,
		intake:   usecase.NewIntake(page, store, preview, page.Preview(), deps.Metrics),
		tickets: usecase.NewTicketService(usecase.TicketServiceConfig{
			SessionID:    id,
			Surface:      page,
			Fields:       fields,
			Store:        store,
			Preview:      preview,
			AvatarTarget: page.Avatar(),
			IDs:          deps.IDs,
			Clock:        deps.Clock,
			Publisher:    deps.Publisher,
			Log:          deps.Log,
			Metrics:      deps.Metrics,
		}),
	}
}

func (f *Form) Fields() []entity.Field {
	return f.fields.Fields()
}

func (f *Form) State() usecase.State {
	return f.tickets.State()
}

func (f *Form) Snapshot() view.Snapshot {
	return f.page.Snapshot()
}

// Intake - файл выбран через picker или брошен на зону
func (f *Form) Intake(source usecase.IntakeSource, files []*entity.Avatar) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if source == usecase.SourceDrop {
		return f.intake.HandleDrag(&usecase.DragEvent{Type: usecase.Drop, Files: files})
	}
	return f.intake.FromPicker(files)
}

func (f *Form) Drag(ev *usecase.DragEvent) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intake.HandleDrag(ev)
}

func (f *Form) ClickZone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intake.ClickZone()
}

func (f *Form) Remove() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intake.Remove()
}

func (f *Form) Change() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intake.Change()
}

// EditField - ввод в одно из полей; проверяются все поля сразу
func (f *Form) EditField(name, value string) ([]entity.FieldState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.fields.Tracks(name) {
		return nil, false, entity.ErrUnknownField
	}
	f.values[name] = value

	states, ok := f.fields.Validate(f.values)
	return states, ok, nil
}

// Submit - кнопка "Generate My Ticket". Переданные значения
// отслеживаемых полей заменяют сохраненные.
func (f *Form) Submit(ctx context.Context, values map[string]string) (*entity.TicketView, <-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, v := range values {
		if f.fields.Tracks(name) {
			f.values[name] = v
		}
	}

	current := make(map[string]string, len(f.values))
	for k, v := range f.values {
		current[k] = v
	}
	return f.tickets.Submit(ctx, current)
}

func (f *Form) touch(now time.Time) {
	f.mu.Lock()
	f.lastSeen = now
	f.mu.Unlock()
}

func (f *Form) idleSince() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSeen
}
