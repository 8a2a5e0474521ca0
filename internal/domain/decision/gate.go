package decision

import (
	"math/rand"
	"sync"

	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// Gate is an optional pre-filter applied before any network call for an account
type Gate interface {
	Allow(account *entity.Account) bool
}

// GateFunc adapts a function to Gate
type GateFunc func(account *entity.Account) bool

// Allow calls f(account)
func (f GateFunc) Allow(account *entity.Account) bool {
	return f(account)
}

// AlwaysAllow is the gate used when jitter is disabled
var AlwaysAllow Gate = GateFunc(func(*entity.Account) bool { return true })

// CoinFlip lets an account through with probability one half so that
// accounts are not all punched at the same minute of every tick.
type CoinFlip struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoinFlip creates a coin flip gate from rng
func NewCoinFlip(rng *rand.Rand) *CoinFlip {
	return &CoinFlip{rng: rng}
}

// NewSeededCoinFlip creates a coin flip gate with a deterministic source
func NewSeededCoinFlip(seed int64) *CoinFlip {
	return NewCoinFlip(rand.New(rand.NewSource(seed)))
}

// Allow implements Gate
func (c *CoinFlip) Allow(*entity.Account) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(2) == 0
}
