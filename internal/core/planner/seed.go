package planner

import (
	"math/rand"
	"sync"
	"time"
)

// seedSource 為未指定種子的請求產生種子
type seedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newSeedSource() *seedSource {
	return &seedSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *seedSource) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Int63()
}
