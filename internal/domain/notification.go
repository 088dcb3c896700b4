package domain

// NotificationType enumerates the kinds of notification a user can receive.
type NotificationType string

// NotificationAnswer is sent to a question's author when someone else answers.
const NotificationAnswer NotificationType = "answer"

// Notification is a message addressed to a single user.
type Notification struct {
	Document
	UserID  string           `json:"user_id"`
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
	IsRead  bool             `json:"is_read"`

	QuestionID string `json:"question_id,omitempty"`
	AnswerID   string `json:"answer_id,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
}

// MarkRead flags the notification as read. It reports whether anything changed.
func (n *Notification) MarkRead() bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.Touch()
	return true
}
