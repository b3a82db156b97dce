package session

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/entity"
	"github.com/St1cky1/ticket-generator/internal/usecase"
)

var startDate = time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)

// fixedRand всегда возвращает одно и то же число
type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

func newTestForm() *Form {
	return NewForm("session-1", FormDeps{
		IDs:   usecase.NewTicketIDGenerator(fixedRand(7)),
		Clock: clock.Fake(startDate),
	})
}

func pngAvatar(t *testing.T, name string) *entity.Avatar {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("Expected no error encoding png, got %v", err)
	}
	return &entity.Avatar{
		Name:        name,
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Data:        buf.Bytes(),
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected preview to complete, timed out")
	}
}

func adaValues() map[string]string {
	return map[string]string{
		entity.FieldFullName:  "Ada Lovelace",
		entity.FieldEmailAddr: "ada@example.com",
		entity.FieldUsername:  "ada",
	}
}
