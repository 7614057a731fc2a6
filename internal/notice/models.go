package notice

import "time"

// Status is the single source of truth for a notice's review state. Which
// physical collection holds the record is derived from it, never the reverse.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

type Author struct {
	UserID string `bson:"uid" json:"uid"`
	Email  string `bson:"email" json:"email"`
}

type Attachment struct {
	URL       string `bson:"url" json:"url"`
	MIMEClass string `bson:"mime_class" json:"mime_class"` // "pdf" or "image"
}

// Notice is a user-submitted announcement. It lives in exactly one of the two
// collections at any time; IsApproved is kept consistent with Status on every
// write so clients can read approval state straight off the document.
type Notice struct {
	ID         string      `bson:"_id" json:"id"`
	Title      string      `bson:"title" json:"title"`
	Content    string      `bson:"content" json:"content"`
	Timestamp  time.Time   `bson:"timestamp" json:"timestamp"`
	Author     Author      `bson:"author" json:"author"`
	IsApproved bool        `bson:"isApproved" json:"isApproved"`
	ApprovedAt *time.Time  `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Attachment *Attachment `bson:"attachment,omitempty" json:"attachment,omitempty"`
	Status     Status      `bson:"-" json:"status"`
}
