package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

// MockImageTarget - мок для IImageTarget
type MockImageTarget struct {
	mu      sync.Mutex
	sources []string
}

var _ IImageTarget = (*MockImageTarget)(nil)

func (m *MockImageTarget) SetSource(src string) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

func (m *MockImageTarget) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sources) == 0 {
		return ""
	}
	return m.sources[len(m.sources)-1]
}

func (m *MockImageTarget) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

// MockTicketPublisher - мок для TicketPublisher
type MockTicketPublisher struct {
	PublishTicketIssuedFunc func(ctx context.Context, message *entity.TicketIssuedMessage) error
}

var _ TicketPublisher = (*MockTicketPublisher)(nil)

func (m *MockTicketPublisher) PublishTicketIssued(ctx context.Context, message *entity.TicketIssuedMessage) error {
	if m.PublishTicketIssuedFunc != nil {
		return m.PublishTicketIssuedFunc(ctx, message)
	}
	return nil
}

// stubRand всегда возвращает одно и то же число
type stubRand struct {
	value int
	lastN int
}

func (s *stubRand) IntN(n int) int {
	s.lastN = n
	return s.value
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Expected no error encoding png, got %v", err)
	}
	return buf.Bytes()
}

func pngAvatar(t *testing.T, name string) *entity.Avatar {
	t.Helper()
	data := pngBytes(t, 8, 4)
	return &entity.Avatar{
		Name:        name,
		ContentType: "image/png",
		Size:        10 * 1024,
		Data:        data,
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
