package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/entity"
)

type State string

const (
	StateEditing   State = "editing"
	StateConfirmed State = "confirmed"
)

const publishTimeout = 5 * time.Second

type TicketServiceConfig struct {
	SessionID    string
	Surface      ISurface
	Fields       *FieldValidator
	Store        *AvatarStore
	Preview      *PreviewRenderer
	AvatarTarget IImageTarget
	IDs          *TicketIDGenerator
	Clock        clock.Clock
	Publisher    TicketPublisher
	Log          *slog.Logger
	Metrics      *Metrics
}

// TicketService - контроллер отправки формы: Editing -> Confirmed.
// Из Confirmed обратного перехода нет.
type TicketService struct {
	mu    sync.Mutex
	state State
	cfg   TicketServiceConfig
}

func NewTicketService(cfg TicketServiceConfig) *TicketService {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.IDs == nil {
		cfg.IDs = NewTicketIDGenerator(nil)
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &TicketService{
		state: StateEditing,
		cfg:   cfg,
	}
}

func (s *TicketService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit проверяет поля, затем аватарку, и при успехе переключает страницу
// на подтверждение. Канал закрывается, когда аватарка на билете отрисована;
// сама отправка его не ждет.
func (s *TicketService) Submit(ctx context.Context, values map[string]string) (*entity.TicketView, <-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConfirmed {
		s.cfg.Metrics.submission(entity.ErrAlreadyConfirmed)
		return nil, closedChan(), entity.ErrAlreadyConfirmed
	}

	s.cfg.Surface.ClearError()

	// 1. Поля формы
	if _, ok := s.cfg.Fields.Validate(values); !ok {
		s.cfg.Surface.ClearTicketNumber()
		s.cfg.Metrics.submission(entity.ErrFieldsInvalid)
		return nil, closedChan(), entity.ErrFieldsInvalid
	}

	// 2. Аватарка, повторная проверка типа
	avatar := s.cfg.Store.Get()
	if !avatar.IsImage() {
		s.cfg.Surface.ShowError(entity.MessageInvalidType)
		s.cfg.Metrics.submission(entity.ErrInvalidType)
		return nil, closedChan(), entity.ErrInvalidType
	}

	// 3. Билет
	now := s.cfg.Clock.Now()
	view := &entity.TicketView{
		FullName:     values[entity.FieldFullName],
		Email:        values[entity.FieldEmailAddr],
		Username:     values[entity.FieldUsername],
		Month:        now.Month().String(),
		Day:          now.Day(),
		Year:         now.Year(),
		TicketNumber: s.cfg.IDs.Next(),
		IssuedAt:     now,
	}

	s.cfg.Surface.ShowConfirmation(view)
	ready := s.cfg.Preview.Render(avatar, s.cfg.AvatarTarget)
	s.state = StateConfirmed
	s.cfg.Metrics.submission(nil)

	s.sendTicketIssued(ctx, view, avatar)

	return view, ready, nil
}

func (s *TicketService) sendTicketIssued(ctx context.Context, view *entity.TicketView, avatar *entity.Avatar) {
	if s.cfg.Publisher == nil {
		return
	}

	msg := &entity.TicketIssuedMessage{
		SessionID:    s.cfg.SessionID,
		TicketNumber: view.TicketNumber,
		Username:     view.Username,
		Email:        view.Email,
		AvatarType:   avatar.ContentType,
		AvatarSize:   avatar.Size,
		Timestamp:    view.IssuedAt,
	}

	// Асинхронная отправка, на результат формы не влияет
	pubCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(pubCtx, publishTimeout)
		defer cancel()

		if err := s.cfg.Publisher.PublishTicketIssued(pubCtx, msg); err != nil {
			s.cfg.Log.Warn("ticket_issued_publish_failed",
				slog.String("session_id", msg.SessionID),
				slog.String("ticket_number", msg.TicketNumber),
				slog.String("err", err.Error()),
			)
		}
	}()
}
