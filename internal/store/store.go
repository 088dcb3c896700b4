package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/domain"
)

// Key prefixes of the badger keyspace.
const (
	userPrefix         = "user:"
	questionPrefix     = "question:"
	answerPrefix       = "answer:"
	notificationPrefix = "notif:"
)

// Prefixes lists every entity prefix, for tools that walk the keyspace.
var Prefixes = []string{userPrefix, questionPrefix, answerPrefix, notificationPrefix}

// ErrTxnConflict is returned when an optimistic transaction lost a race with
// another writer. It is not retried.
var ErrTxnConflict = errors.New("transaction conflict")

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users         *Entity[domain.User]
	Questions     *Entity[domain.Question]
	Answers       *Entity[domain.Answer]
	Notifications *Entity[domain.Notification]
}

var _ Repository = (*Store)(nil)

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.initUsers()
	s.initQuestions()
	s.initAnswers()
	s.initNotifications()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping reports whether the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// Backend names the storage engine.
func (s *Store) Backend() string { return "badger" }

// Counts returns the number of stored records per entity.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Users, err = countEntities(ctx, s.Users); err != nil {
		return Counts{}, err
	}
	if c.Questions, err = countEntities(ctx, s.Questions); err != nil {
		return Counts{}, err
	}
	if c.Answers, err = countEntities(ctx, s.Answers); err != nil {
		return Counts{}, err
	}
	if c.Notifications, err = countEntities(ctx, s.Notifications); err != nil {
		return Counts{}, err
	}
	return c, nil
}

func countEntities[T any](ctx context.Context, e *Entity[T]) (int, error) {
	n := 0
	for _, err := range e.List(ctx) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// update runs fn in a read-write transaction.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrTxnConflict, err)
	}
	return err
}

func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform("username",
			func(u *domain.User) []string {
				return []string{domain.NormalizeUsername(u.Username)}
			},
			domain.NormalizeUsername,
		).
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{domain.NormalizeEmail(u.Email)}
			},
			domain.NormalizeEmail,
		)
}

func (s *Store) initQuestions() {
	s.Questions = NewEntity[domain.Question](s, questionPrefix).
		WithListIndex("tag", func(q *domain.Question) []string {
			return q.Tags
		})
}

func (s *Store) initAnswers() {
	s.Answers = NewEntity[domain.Answer](s, answerPrefix).
		WithListIndex("question", func(a *domain.Answer) []string {
			return []string{a.QuestionID}
		})
}

func (s *Store) initNotifications() {
	s.Notifications = NewEntity[domain.Notification](s, notificationPrefix).
		WithListIndex("user", func(n *domain.Notification) []string {
			return []string{n.UserID}
		})
}
