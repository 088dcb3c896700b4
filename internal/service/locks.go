package service

import (
	"log/slog"
	"sync"
)

// keyedMutex hands out one mutex per key. Entries are reference counted and
// dropped when the last holder unlocks, so the table only holds keys that are
// in use.
type keyedMutex[K comparable] struct {
	mu sync.Mutex
	m  map[K]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex[K comparable]() *keyedMutex[K] {
	return &keyedMutex[K]{m: make(map[K]*keyedEntry)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (km *keyedMutex[K]) Lock(key K) (unlock func()) {
	km.mu.Lock()
	e, ok := km.m[key]
	if !ok {
		e = &keyedEntry{}
		km.m[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		km.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(km.m, key)
		}
		km.mu.Unlock()
	}
}

// Len returns the number of keys currently held or waited on.
func (km *keyedMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.m)
}

// QuestionLocks serializes writes to a question record. Posting, voting and
// accepting all rewrite the question, so the question and answer services
// must share one table.
type QuestionLocks struct {
	keyedMutex[string]
}

// NewQuestionLocks creates an empty lock table.
func NewQuestionLocks() *QuestionLocks {
	return &QuestionLocks{keyedMutex: keyedMutex[string]{m: make(map[string]*keyedEntry)}}
}

func orNewLocks(locks *QuestionLocks) *QuestionLocks {
	if locks == nil {
		return NewQuestionLocks()
	}
	return locks
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
