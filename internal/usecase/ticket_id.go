package usecase

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

const ticketIDSpace = 1_000_000

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// TicketIDGenerator выдает номера вида #000000..#999999.
// Уникальность не гарантируется.
type TicketIDGenerator struct {
	mu  sync.Mutex
	rnd RandomSource
}

// NewTicketIDGenerator с nil использует общий генератор math/rand/v2
func NewTicketIDGenerator(rnd RandomSource) *TicketIDGenerator {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &TicketIDGenerator{rnd: rnd}
}

func (g *TicketIDGenerator) Next() string {
	g.mu.Lock()
	n := g.rnd.IntN(ticketIDSpace)
	g.mu.Unlock()

	return fmt.Sprintf("#%06d", n)
}
