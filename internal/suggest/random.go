package suggest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/park285/cheese-board/internal/match"
)

// Random picks uniformly among legal moves. Safe for concurrent use.
type Random struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandom seeds from seed, or from the wall clock when seed is 0.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rand: rand.New(rand.NewSource(seed))}
}

func (r *Random) SetRandomSeed(seed int64) {
	r.mu.Lock()
	r.rand = rand.New(rand.NewSource(seed))
	r.mu.Unlock()
}

// Pick returns false only for an empty move list.
func (r *Random) Pick(moves []match.Move) (match.Move, bool) {
	if len(moves) == 0 {
		return match.Move{}, false
	}
	r.mu.Lock()
	i := r.rand.Intn(len(moves))
	r.mu.Unlock()
	return moves[i], true
}
