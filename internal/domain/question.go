package domain

// Question is a user's question. AnswerIDs keeps answers in the order they
// were posted.
type Question struct {
	Document
	Title       string   `json:"title"`
	Description string   `json:"description"` // untrusted HTML, stored verbatim
	Tags        []string `json:"tags"`
	AuthorID    string   `json:"author_id"`
	AnswerIDs   []string `json:"answer_ids"`
	Votes       int      `json:"votes"`

	// AcceptedAnswerID mirrors the is_accepted flag of this question's answers.
	// It is written in the same transaction as the flags.
	AcceptedAnswerID string `json:"accepted_answer_id,omitempty"`
}

// AnswerCount returns the number of answers linked to the question.
func (q *Question) AnswerCount() int {
	return len(q.AnswerIDs)
}

// AddAnswer links an answer id to the question.
func (q *Question) AddAnswer(answerID string) {
	q.AnswerIDs = append(q.AnswerIDs, answerID)
	q.Touch()
}

// IsAuthor reports whether userID wrote the question.
func (q *Question) IsAuthor(userID string) bool {
	return userID != "" && q.AuthorID == userID
}
