package storage

import (
	"context"
	"log"
	"sync"
)

// Simulated keeps uploaded objects in memory, for running the dashboard
// without AWS credentials.
type Simulated struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewSimulated() *Simulated {
	return &Simulated{objects: make(map[string][]byte)}
}

func (s *Simulated) Upload(_ context.Context, data []byte, bucket, suggestedName string) Result {
	key := buildKey(suggestedName)

	s.mu.Lock()
	s.objects[key] = append([]byte(nil), data...)
	s.mu.Unlock()

	log.Printf("[storage] simulated upload to %s/%s (%d bytes)", bucket, key, len(data))
	return Result{Key: key}
}

// Object returns a stored object, for tests.
func (s *Simulated) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
