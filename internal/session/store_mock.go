package session

import (
	"context"
	"sync"
)

var _ Store = (*storeMock)(nil)

// storeMock is an in-memory Store used in tests.
type storeMock struct {
	mutex   sync.Mutex
	session *Session

	GetCalls    int
	SetCalls    int
	RemoveCalls int
}

func NewStoreMock() *storeMock {
	return &storeMock{}
}

func (sm *storeMock) Get(_ context.Context) (*Session, error) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.GetCalls++
	if sm.session == nil {
		return nil, nil
	}
	s := *sm.session
	return &s, nil
}

func (sm *storeMock) Set(_ context.Context, s Session) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.SetCalls++
	sm.session = &s
	return nil
}

func (sm *storeMock) Remove(_ context.Context) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.RemoveCalls++
	sm.session = nil
	return nil
}

// Stored returns a copy of the currently persisted session, nil when empty.
func (sm *storeMock) Stored() *Session {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	if sm.session == nil {
		return nil
	}
	s := *sm.session
	return &s
}
