package askengine

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

type fakePerms struct {
	read, edit bool
}

func (f fakePerms) CanReadQuestion(User, Post) bool { return f.read }
func (f fakePerms) CanEditAnswer(User, Post) bool   { return f.edit }

func TestQuestionPermissionMsgDenied(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(), WithPermissions(fakePerms{read: false}))

	tests := []struct {
		status PostStatus
		want   string
	}{
		{StatusModerate, msgAwaitModeration},
		{StatusPublish, msgNotAllowedRead},
		{StatusFuture, msgNotAllowedRead},
		{StatusPrivate, msgNotAllowedRead},
		{StatusDraft, msgNotAllowedRead},
		{StatusTrash, msgNotAllowedRead},
	}
	for _, tt := range tests {
		got := a.QuestionPermissionMsg(context.Background(), language.English, User{}, Post{Type: PostTypeQuestion, Status: tt.status})
		if got != tt.want {
			t.Errorf("status %s: msg = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestQuestionPermissionMsgFuture(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(),
		WithPermissions(fakePerms{read: true}),
		WithClock(func() time.Time { return testNow }))

	q := Post{Type: PostTypeQuestion, Status: StatusFuture, Date: testNow.Add(3 * time.Hour)}
	got := a.QuestionPermissionMsg(context.Background(), language.English, User{ID: 1}, q)

	if !strings.Contains(got, "<strong>Question will be published in 3 hours</strong>") {
		t.Errorf("msg = %q, want publish countdown", got)
	}
	if !strings.Contains(got, "<p>"+msgNotPublishedYet+"</p>") {
		t.Errorf("msg = %q, want explanatory note", got)
	}
}

func TestQuestionPermissionMsgGranted(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(), WithPermissions(fakePerms{read: true}))

	for _, s := range []PostStatus{StatusPublish, StatusModerate, StatusPrivate, StatusDraft} {
		got := a.QuestionPermissionMsg(context.Background(), language.English, User{}, Post{Type: PostTypeQuestion, Status: s})
		if got != "" {
			t.Errorf("status %s: msg = %q, want none", s, got)
		}
	}
}

func TestQuestionPermissionMsgFilter(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(), WithPermissions(fakePerms{read: false}))
	var seen string
	a.Hooks.QuestionPermissionMsg.Add(func(_ context.Context, msg string) string {
		seen = msg
		return "custom"
	})

	got := a.QuestionPermissionMsg(context.Background(), language.English, User{}, Post{Status: StatusModerate})

	if seen != msgAwaitModeration {
		t.Errorf("filter saw %q, want %q", seen, msgAwaitModeration)
	}
	if got != "custom" {
		t.Errorf("msg = %q, want %q", got, "custom")
	}
}

func TestQuestionPermissionMsgTranslated(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(), WithPermissions(fakePerms{read: false}))

	got := a.QuestionPermissionMsg(context.Background(), language.German, User{}, Post{Status: StatusModerate})

	if got != germanMessages[msgAwaitModeration] {
		t.Errorf("msg = %q, want %q", got, germanMessages[msgAwaitModeration])
	}
}

func TestDefaultPermissionsCanReadQuestion(t *testing.T) {
	guest := User{}
	author := User{ID: 1, Role: RoleSubscriber}
	other := User{ID: 2, Role: RoleSubscriber}
	mod := User{ID: 3, Role: RoleModerator}

	tests := []struct {
		name   string
		user   User
		status PostStatus
		want   bool
	}{
		{"guest published", guest, StatusPublish, true},
		{"guest moderate", guest, StatusModerate, false},
		{"guest future", guest, StatusFuture, false},
		{"author moderate", author, StatusModerate, true},
		{"author future", author, StatusFuture, true},
		{"author private", author, StatusPrivate, true},
		{"author trash", author, StatusTrash, false},
		{"other moderate", other, StatusModerate, false},
		{"other private", other, StatusPrivate, false},
		{"moderator moderate", mod, StatusModerate, true},
		{"moderator trash", mod, StatusTrash, true},
	}
	for _, tt := range tests {
		q := Post{Type: PostTypeQuestion, AuthorID: author.ID, Status: tt.status}
		if got := (DefaultPermissions{}).CanReadQuestion(tt.user, q); got != tt.want {
			t.Errorf("%s: CanReadQuestion = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDefaultPermissionsCanEditAnswer(t *testing.T) {
	author := User{ID: 1, Role: RoleSubscriber}
	answer := Post{Type: PostTypeAnswer, AuthorID: author.ID, Status: StatusPublish}

	tests := []struct {
		name string
		user User
		post Post
		want bool
	}{
		{"author", author, answer, true},
		{"guest", User{}, answer, false},
		{"other user", User{ID: 2}, answer, false},
		{"admin", User{ID: 9, Role: RoleAdministrator}, answer, true},
		{"author trashed", author, Post{Type: PostTypeAnswer, AuthorID: 1, Status: StatusTrash}, false},
		{"question is not an answer", author, Post{Type: PostTypeQuestion, AuthorID: 1, Status: StatusPublish}, false},
	}
	for _, tt := range tests {
		if got := (DefaultPermissions{}).CanEditAnswer(tt.user, tt.post); got != tt.want {
			t.Errorf("%s: CanEditAnswer = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestQuestionPermissionMsgFutureDue(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(), WithClock(func() time.Time { return testNow }))
	author := User{ID: 1, Role: RoleSubscriber}

	for _, date := range []time.Time{testNow.Add(-2 * time.Hour), testNow} {
		q := Post{Type: PostTypeQuestion, Status: StatusFuture, AuthorID: author.ID, Date: date}
		if got := a.QuestionPermissionMsg(context.Background(), language.English, author, q); got != "" {
			t.Errorf("date %v: msg = %q, want none once the publish date passed", date, got)
		}
		if got := a.QuestionPermissionMsg(context.Background(), language.English, User{}, q); got != "" {
			t.Errorf("date %v: guest msg = %q, want none once the publish date passed", date, got)
		}
	}
}

func TestQuestionPermissionMsgCountdownClamped(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(),
		WithPermissions(fakePerms{read: true}),
		WithClock(func() time.Time { return testNow }))

	q := Post{Type: PostTypeQuestion, Status: StatusFuture, Date: testNow.Add(500 * time.Millisecond)}
	got := a.QuestionPermissionMsg(context.Background(), language.English, User{ID: 1}, q)

	if !strings.Contains(got, "<strong>Question will be published in 1 minute</strong>") {
		t.Errorf("msg = %q, want a one minute countdown", got)
	}
}

func TestQuestionPermissionMsgFutureGerman(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "s"}, testViews(),
		WithPermissions(fakePerms{read: true}),
		WithClock(func() time.Time { return testNow }))

	q := Post{Type: PostTypeQuestion, Status: StatusFuture, Date: testNow.Add(3 * time.Hour)}
	got := a.QuestionPermissionMsg(context.Background(), language.German, User{ID: 1}, q)

	if !strings.Contains(got, "<strong>Die Frage wird in 3 Stunden veröffentlicht</strong>") {
		t.Errorf("msg = %q, want German countdown", got)
	}
}
