// Package registry holds the process-wide binding table and the greeted set.
// Both are owned by a single service value and only reachable through
// synchronized methods.
package registry

import (
	"sync"

	"github.com/samber/lo"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type service struct {
	mu       sync.Mutex
	bindings map[string]map[string]model.Subscriber // device id -> subscriber key -> subscriber
	greeted  map[string]struct{}
}

func New() *service {
	return &service{
		bindings: make(map[string]map[string]model.Subscriber),
		greeted:  make(map[string]struct{}),
	}
}

// Bind adds subscriber to the device's binding set. Binding is idempotent;
// rebinding an already bound subscriber leaves the set unchanged.
func (s *service) Bind(deviceID string, sub model.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.bindings[deviceID]
	if !ok {
		set = make(map[string]model.Subscriber)
		s.bindings[deviceID] = set
	}
	set[sub.Key()] = sub
}

// SubscribersOf returns the bound subscribers of a device. An unknown device
// yields an empty slice, never an error.
func (s *service) SubscribersOf(deviceID string) []model.Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Values(s.bindings[deviceID])
}

// FirstContact reports whether sub has never been greeted, marking it greeted
// in the same critical section. Only the first call per subscriber returns
// true for the lifetime of the process.
func (s *service) FirstContact(sub model.Subscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sub.Key()
	if _, ok := s.greeted[key]; ok {
		return false
	}
	s.greeted[key] = struct{}{}
	return true
}
