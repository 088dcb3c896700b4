package domain

// Answer is a reply to a question. At most one answer per question has
// IsAccepted set.
type Answer struct {
	Document
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	Content    string `json:"content"` // untrusted HTML
	Votes      int    `json:"votes"`
	IsAccepted bool   `json:"is_accepted"`
}
