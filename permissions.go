package askengine

import (
	"context"
	"errors"
	"fmt"
)

// Permissions decides who may read questions and edit answers.
type Permissions interface {
	CanReadQuestion(u User, q Post) bool
	CanEditAnswer(u User, a Post) bool
}

// DefaultPermissions grants moderators everything, the public published
// questions, and authors their own posts.
type DefaultPermissions struct{}

// CanReadQuestion implements Permissions.
func (DefaultPermissions) CanReadQuestion(u User, q Post) bool {
	if u.IsModerator() {
		return true
	}
	switch q.Status {
	case StatusPublish:
		return true
	case StatusFuture, StatusModerate, StatusPrivate, StatusDraft:
		return !u.IsGuest() && q.AuthorID == u.ID
	}
	return false
}

// CanEditAnswer implements Permissions.
func (DefaultPermissions) CanEditAnswer(u User, a Post) bool {
	if u.IsGuest() || a.Type != PostTypeAnswer {
		return false
	}
	if u.IsModerator() {
		return true
	}
	return a.AuthorID == u.ID && a.Status != StatusTrash
}

// canEditQuestion applies the answer rule to questions: moderators or the author.
func canEditQuestion(u User, q Post) bool {
	if u.IsGuest() {
		return false
	}
	return u.IsModerator() || (q.AuthorID == u.ID && q.Status != StatusTrash)
}

// moderatorStatuses are the statuses a moderator may pick on the ask form.
// Scheduling needs a date and is not offered.
var moderatorStatuses = []PostStatus{StatusPublish, StatusModerate, StatusPrivate, StatusDraft, StatusTrash}

// canSetStatus reports whether u may move a question to s from the ask form.
func canSetStatus(u User, s PostStatus) bool {
	return u.IsModerator() && ValidStatus(s) && s != StatusFuture
}

// statusChoices returns the statuses u may pick, or nil when u picks none.
func statusChoices(u User) []PostStatus {
	if !u.IsModerator() {
		return nil
	}
	return moderatorStatuses
}

// userCanEditAnswer loads the post and asks the configured Permissions.
// A missing post is a denial, not an error.
func (a *App) userCanEditAnswer(ctx context.Context, u User, id int64) (bool, error) {
	p, err := a.Store.GetPost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("askengine: load answer %d: %w", id, err)
	}
	return a.Perms.CanEditAnswer(u, p), nil
}
