// Package main seeds a data directory with demo users, questions, answers,
// votes and accepted answers. Everything goes through the service layer, so
// notifications are created exactly as the API would create them.
//
// Usage:
//
//	DATA_PATH=~/stackit go run ./cmd/seed
//	DATA_PATH=~/stackit go run ./cmd/seed --store sqlite
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/service"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/store/sqlite"
	"github.com/stackit/stackit-server/internal/validation"
)

const demoPassword = "stackit-demo"

var backend = flag.String("store", config.BackendBadger, "Store backend: badger or sqlite")

var demoUsers = []string{"ada", "linus", "grace", "ken"}

var demoQuestions = []struct {
	title       string
	description string
	tags        []string
}{
	{
		title:       "How do I cancel a goroutine that is blocked on a channel?",
		description: "<p>My worker reads from a channel in a loop. How do I stop it cleanly when the request is cancelled?</p>",
		tags:        []string{"go", "concurrency", "context"},
	},
	{
		title:       "Why does my React component render twice?",
		description: "<p>With <code>StrictMode</code> on, every <strong>useEffect</strong> fires twice in development.</p>",
		tags:        []string{"react", "javascript"},
	},
	{
		title:       "Difference between a LEFT JOIN and a LEFT OUTER JOIN",
		description: "<p>Are they the same thing in PostgreSQL?</p>",
		tags:        []string{"sql", "postgresql"},
	},
	{
		title:       "Is it safe to store JWTs in localStorage?",
		description: "<p>I keep reading conflicting advice. What are the actual risks?</p>",
		tags:        []string{"security", "javascript", "authentication"},
	},
	{
		title:       "Rust borrow checker complains about a mutable borrow in a loop",
		description: "<p>I push into a <code>Vec</code> while iterating over another field of the same struct.</p>",
		tags:        []string{"rust", "borrow-checker"},
	},
}

var demoAnswers = []string{
	"<p>Select on both the channel and <code>ctx.Done()</code>.</p>",
	"<p>That is expected in development. It does not happen in production builds.</p>",
	"<p>Yes, <em>OUTER</em> is optional and the two are identical.</p>",
	"<p>Any script on the page can read localStorage, so an XSS bug leaks the token.</p>",
	"<p>Split the struct so the two borrows are on different values.</p>",
	"<p>Have you tried reading the documentation? It covers this exact case.</p>",
}

type seeder struct {
	auth      *service.AuthService
	questions *service.QuestionService
	answers   *service.AnswerService
	rng       *rand.Rand
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/stackit")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	fmt.Printf("Seeding %s store at: %s\n", *backend, dataPath)

	repo, err := openStore(*backend, dataPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	key, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	v := validation.New()
	enricher := dto.NewEnricher(repo)
	locks := service.NewQuestionLocks()
	s := &seeder{
		auth:      service.NewAuthService(repo, tokens, v, nil),
		questions: service.NewQuestionService(repo, enricher, v, locks, service.DefaultMaxTags, nil),
		answers:   service.NewAnswerService(repo, enricher, v, locks, nil),
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}

	ctx := context.Background()

	users := make([]domain.Identity, 0, len(demoUsers))
	for _, name := range demoUsers {
		identity, err := s.user(ctx, name)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", name, err)
		}
		users = append(users, identity)
	}
	fmt.Printf("Users ready: %d (password %q)\n", len(users), demoPassword)

	for i, dq := range demoQuestions {
		author := users[i%len(users)]
		q, err := s.questions.Create(ctx, author, service.CreateQuestionRequest{
			Title:       dq.title,
			Description: dq.description,
			Tags:        dq.tags,
		})
		if err != nil {
			log.Printf("Failed to create question %q: %v", dq.title, err)
			continue
		}
		fmt.Printf("\nQuestion: %s\n", q.Title)

		s.seedThread(ctx, q, author, users)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		log.Fatalf("Failed to count records: %v", err)
	}
	fmt.Printf("\nDone: %d users, %d questions, %d answers, %d notifications\n",
		counts.Users, counts.Questions, counts.Answers, counts.Notifications)
}

func openStore(backend, dataPath string) (store.Repository, error) {
	switch backend {
	case config.BackendSQLite:
		return sqlite.Open(filepath.Join(dataPath, "stackit.db"), nil)
	case config.BackendBadger:
		return store.New(filepath.Join(dataPath, "db"), nil)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// user registers name unless it already exists, then logs in.
func (s *seeder) user(ctx context.Context, name string) (domain.Identity, error) {
	email := name + "@stackit.dev"

	_, err := s.auth.Register(ctx, service.RegisterRequest{
		Username: name,
		Email:    email,
		Password: demoPassword,
	})
	if err != nil && !errors.Is(err, domainerrors.ErrConflict) {
		return domain.Identity{}, err
	}

	resp, err := s.auth.Login(ctx, service.LoginRequest{Email: email, Password: demoPassword})
	if err != nil {
		return domain.Identity{}, err
	}
	return s.auth.Verify(ctx, resp.Token)
}

// seedThread answers q from a few users, votes on everything and sometimes
// accepts an answer.
func (s *seeder) seedThread(ctx context.Context, q *dto.Question, author domain.Identity, users []domain.Identity) {
	var posted []*dto.Answer
	for _, u := range users {
		if u.UserID == author.UserID || s.rng.IntN(3) == 0 {
			continue
		}
		a, err := s.answers.Post(ctx, u, q.ID, service.PostAnswerRequest{
			Content: demoAnswers[s.rng.IntN(len(demoAnswers))],
		})
		if err != nil {
			log.Printf("  Failed to answer: %v", err)
			continue
		}
		posted = append(posted, a)
		fmt.Printf("  Answered by %s\n", u.Username)
	}

	for _, u := range users {
		direction := service.VoteUp
		if s.rng.IntN(4) == 0 {
			direction = service.VoteDown
		}
		if _, err := s.questions.Vote(ctx, u, q.ID, direction); err != nil {
			log.Printf("  Failed to vote on question: %v", err)
		}
		for _, a := range posted {
			if _, err := s.answers.Vote(ctx, u, a.ID, service.VoteUp); err != nil {
				log.Printf("  Failed to vote on answer: %v", err)
			}
		}
	}

	if len(posted) > 0 && s.rng.IntN(2) == 0 {
		chosen := posted[s.rng.IntN(len(posted))]
		if _, err := s.answers.Accept(ctx, author, chosen.ID); err != nil {
			log.Printf("  Failed to accept answer: %v", err)
		} else {
			fmt.Printf("  Accepted answer by %s\n", chosen.Author.Username)
		}
	}
}
