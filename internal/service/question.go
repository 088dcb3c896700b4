package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/dto"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
	"github.com/stackit/stackit-server/internal/id"
	"github.com/stackit/stackit-server/internal/richtext"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/validation"
)

// DefaultMaxTags is the tag limit used when none is configured.
const DefaultMaxTags = 5

// Listing filters.
const (
	FilterNewest     = "newest"
	FilterUnanswered = "unanswered"
	FilterAnswered   = "answered"
	FilterActive     = "active"
)

// QuestionService creates, lists and votes on questions.
type QuestionService struct {
	store         store.Repository
	enricher      *dto.Enricher
	validator     *validation.Validator
	questionLocks *QuestionLocks
	maxTags       int
	logger        *slog.Logger
}

// NewQuestionService creates a new question service. locks must be the table
// given to the AnswerService; nil gets a private one. maxTags <= 0 selects
// DefaultMaxTags.
func NewQuestionService(store store.Repository, enricher *dto.Enricher, validator *validation.Validator, locks *QuestionLocks, maxTags int, logger *slog.Logger) *QuestionService {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &QuestionService{
		store:         store,
		enricher:      enricher,
		validator:     validator,
		questionLocks: orNewLocks(locks),
		maxTags:       maxTags,
		logger:        orDiscard(logger),
	}
}

// CreateQuestionRequest contains the data for asking a question.
type CreateQuestionRequest struct {
	Title       string   `json:"title" validate:"required,max=150"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
}

// ListQuestionsParams narrows and orders a question listing.
type ListQuestionsParams struct {
	Filter string // newest (default), unanswered, answered or active
	Query  string // case-insensitive substring over title, description text and tags
	Tag    string
}

// Create stores a new question authored by actor.
func (s *QuestionService) Create(ctx context.Context, actor domain.Identity, req CreateQuestionRequest) (*dto.Question, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	tags, err := s.normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	questionID, err := id.Generate(id.PrefixQuestion)
	if err != nil {
		return nil, fmt.Errorf("generate question ID: %w", err)
	}

	q := &domain.Question{
		Title:       req.Title,
		Description: req.Description,
		Tags:        tags,
		AuthorID:    actor.UserID,
		AnswerIDs:   []string{},
	}
	q.ID = questionID
	q.InitTimestamps()

	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", q.ID,
		"user_id", actor.UserID,
		"tags", len(tags),
	)

	return s.enricher.Question(ctx, q)
}

// normalizeTags canonicalizes tags and enforces the count and length limits.
func (s *QuestionService) normalizeTags(raw []string) ([]string, error) {
	tags := domain.NormalizeTags(raw)

	var problem string
	switch {
	case len(tags) == 0:
		problem = "at least one tag is required"
	case len(tags) > s.maxTags:
		problem = fmt.Sprintf("must not contain more than %d tags", s.maxTags)
	default:
		for _, t := range tags {
			if utf8.RuneCountInString(t) > domain.MaxTagLength {
				problem = fmt.Sprintf("tag %q exceeds %d characters", t, domain.MaxTagLength)
				break
			}
		}
	}
	if problem != "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"tags": problem})
	}
	return tags, nil
}

// List returns questions newest first, or by latest activity for the active
// filter, with authors resolved.
func (s *QuestionService) List(ctx context.Context, params ListQuestionsParams) ([]dto.Question, error) {
	filter := cmp.Or(strings.ToLower(strings.TrimSpace(params.Filter)), FilterNewest)
	switch filter {
	case FilterNewest, FilterUnanswered, FilterAnswered, FilterActive:
	default:
		return nil, domainerrors.ValidationWithDetails("Invalid filter",
			map[string]string{"filter": "must be one of: newest unanswered answered active"})
	}

	var (
		questions []*domain.Question
		err       error
	)
	if tag := domain.NormalizeTag(params.Tag); tag != "" {
		questions, err = s.store.ListQuestionsByTag(ctx, tag)
	} else {
		questions, err = s.store.ListQuestions(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if query := strings.ToLower(strings.TrimSpace(params.Query)); query != "" {
		questions = slices.DeleteFunc(questions, func(q *domain.Question) bool {
			return !matchesQuery(q, query)
		})
	}

	switch filter {
	case FilterUnanswered:
		questions = slices.DeleteFunc(questions, func(q *domain.Question) bool { return q.AnswerCount() > 0 })
	case FilterAnswered:
		questions = slices.DeleteFunc(questions, func(q *domain.Question) bool { return q.AnswerCount() == 0 })
	case FilterActive:
		if err := s.sortByActivity(ctx, questions); err != nil {
			return nil, err
		}
	}

	return s.enricher.Questions(ctx, questions)
}

func matchesQuery(q *domain.Question, query string) bool {
	if strings.Contains(strings.ToLower(q.Title), query) {
		return true
	}
	if slices.ContainsFunc(q.Tags, func(t string) bool { return strings.Contains(t, query) }) {
		return true
	}
	return strings.Contains(strings.ToLower(richtext.PlainText(q.Description)), query)
}

// sortByActivity orders questions by the newer of their creation and their
// newest answer, most recent first. Answer ids are kept in posting order, so
// the newest answer is the last one.
func (s *QuestionService) sortByActivity(ctx context.Context, questions []*domain.Question) error {
	lastIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		if n := len(q.AnswerIDs); n > 0 {
			lastIDs = append(lastIDs, q.AnswerIDs[n-1])
		}
	}

	answered := make(map[string]time.Time, len(lastIDs))
	if len(lastIDs) > 0 {
		answers, err := s.store.GetAnswersByIDs(ctx, lastIDs)
		if err != nil {
			return fmt.Errorf("fetch latest answers: %w", err)
		}
		for _, a := range answers {
			answered[a.QuestionID] = a.CreatedAt
		}
	}

	activity := func(q *domain.Question) time.Time {
		if t, ok := answered[q.ID]; ok && t.After(q.CreatedAt) {
			return t
		}
		return q.CreatedAt
	}
	slices.SortStableFunc(questions, func(a, b *domain.Question) int {
		if c := activity(b).Compare(activity(a)); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return nil
}

// GetByID returns a question with its answers and every author resolved.
func (s *QuestionService) GetByID(ctx context.Context, questionID string) (*dto.QuestionDetail, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Question not found")
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return s.enricher.QuestionDetail(ctx, q)
}

// ListTags returns the distinct tags in use, sorted ascending.
func (s *QuestionService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Vote applies an up or down vote to a question.
func (s *QuestionService) Vote(ctx context.Context, actor domain.Identity, questionID, direction string) (*dto.Question, error) {
	delta, err := voteDelta(direction)
	if err != nil {
		return nil, err
	}

	unlock := s.questionLocks.Lock(questionID)
	defer unlock()

	q, err := s.store.VoteQuestion(ctx, questionID, delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Question not found")
		}
		return nil, fmt.Errorf("vote question: %w", err)
	}

	s.logger.Debug("Question voted",
		"question_id", questionID,
		"user_id", actor.UserID,
		"direction", direction,
	)

	return s.enricher.Question(ctx, q)
}
