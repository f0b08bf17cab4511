package askengine

import "time"

// PostType distinguishes questions from answers.
type PostType string

const (
	PostTypeQuestion PostType = "question"
	PostTypeAnswer   PostType = "answer"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusPublish  PostStatus = "publish"
	StatusModerate PostStatus = "moderate"
	StatusFuture   PostStatus = "future"
	StatusPrivate  PostStatus = "private_post"
	StatusDraft    PostStatus = "draft"
	StatusTrash    PostStatus = "trash"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s PostStatus) bool {
	switch s {
	case StatusPublish, StatusModerate, StatusFuture, StatusPrivate, StatusDraft, StatusTrash:
		return true
	}
	return false
}

// Post is a question or an answer. Answers point at their question through ParentID.
type Post struct {
	ID       int64
	ParentID int64
	Type     PostType
	Title    string
	Content  string // markdown
	Status   PostStatus
	AuthorID int64
	Date     time.Time // publish time, UTC
	Modified time.Time
	Tags     []string
}

// IsQuestion reports whether p is a question.
func (p Post) IsQuestion() bool { return p.Type == PostTypeQuestion }

// PublishDue returns p as published when it is scheduled and its date is not after now.
func (p Post) PublishDue(now time.Time) Post {
	if p.Status == StatusFuture && !p.Date.After(now) {
		p.Status = StatusPublish
	}
	return p
}

// Role is a user's capability level.
type Role string

const (
	RoleSubscriber    Role = "subscriber"
	RoleModerator     Role = "moderator"
	RoleAdministrator Role = "administrator"
)

// ParseRole maps a role name to a Role, defaulting to RoleSubscriber.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator, RoleAdministrator:
		return Role(s)
	}
	return RoleSubscriber
}

// User is a registered account. The zero User is the anonymous guest.
type User struct {
	ID           int64
	Login        string
	DisplayName  string
	Role         Role
	PasswordHash string
}

// IsGuest reports whether u is the anonymous user.
func (u User) IsGuest() bool { return u.ID == 0 }

// IsModerator reports whether u may moderate any post.
func (u User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdministrator
}

// Name returns the display name, falling back to the login.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Login
}

// TaxQuery restricts a question query by taxonomy terms.
type TaxQuery struct {
	Relation string // "OR" or "AND"
	Terms    []TaxTerm
}

// TaxTerm names the terms of one taxonomy a question must carry.
type TaxTerm struct {
	Taxonomy string
	Terms    []string
}

// TaxonomyTag is the taxonomy of question tags.
const TaxonomyTag = "question_tag"

// QueryArgs are the arguments of the main question listing query.
type QueryArgs struct {
	Search   string
	TaxQuery TaxQuery
	Page     int
	PerPage  int
}

// QuestionList is the result of a question query.
type QuestionList struct {
	Questions []Post
	Total     int
	Page      int
	PerPage   int
	Args      QueryArgs
}

// HasMore reports whether a later page exists.
func (l QuestionList) HasMore() bool {
	return l.Page*l.PerPage < l.Total
}
