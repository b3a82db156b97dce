package usecase

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/St1cky1/ticket-generator/internal/entity"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PreviewRenderer асинхронно превращает файл в data: URI и назначает его
// элементу img. Для каждого элемента ведется счетчик запросов, результат
// устаревшего запроса отбрасывается.
type PreviewRenderer struct {
	mu          sync.Mutex
	generations map[IImageTarget]uint64
}

func NewPreviewRenderer() *PreviewRenderer {
	return &PreviewRenderer{
		generations: make(map[IImageTarget]uint64),
	}
}

// Render не блокируется. Возвращаемый канал закрывается, когда src
// назначен или результат отброшен.
func (r *PreviewRenderer) Render(a *entity.Avatar, target IImageTarget) <-chan struct{} {
	done := make(chan struct{})
	gen := r.bump(target)

	if !a.IsImage() {
		target.SetSource("")
		close(done)
		return done
	}

	contentType := a.ContentType
	data := a.Data

	go func() {
		defer close(done)

		src := DataURL(contentType, data)
		cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data))

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.generations[target] != gen {
			return
		}
		target.SetSource(src)
		if dt, ok := target.(IDimensionTarget); ok && cfgErr == nil {
			dt.SetDimensions(cfg.Width, cfg.Height)
		}
	}()

	return done
}

// Invalidate отбрасывает незавершенные запросы для элемента
func (r *PreviewRenderer) Invalidate(target IImageTarget) {
	r.bump(target)
}

func (r *PreviewRenderer) bump(target IImageTarget) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[target]++
	return r.generations[target]
}

// DataURL - аналог FileReader.readAsDataURL
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
