package askengine

import (
	"net/http"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestTranslatorMatch(t *testing.T) {
	tr := NewTranslator("en")

	tests := []struct {
		accept string
		want   language.Tag
	}{
		{"", language.English},
		{"de-DE,de;q=0.9,en;q=0.5", language.German},
		{"fr-FR", language.English},
		{"en-GB", language.English},
	}
	for _, tt := range tests {
		if got := tr.Match(tt.accept); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

func TestTranslatorDefaultLanguage(t *testing.T) {
	tr := NewTranslator("de")
	if got := tr.Default().Sprintf(msgAskTitle); got != "Eine Frage stellen" {
		t.Errorf("Default().Sprintf = %q", got)
	}
	if got := NewTranslator("not a tag").Default().Sprintf(msgAskTitle); got != msgAskTitle {
		t.Errorf("invalid default language should fall back to English, got %q", got)
	}
}

func TestAppT(t *testing.T) {
	a := newTestApp(t)
	c, _ := newContext(a, http.MethodGet, "/", User{})
	c.Request().Header.Set("Accept-Language", "de")

	if got := a.T(c, msgPublishedIn, "3 Stunden"); got != "Die Frage wird in 3 Stunden veröffentlicht" {
		t.Errorf("T = %q", got)
	}
}

func TestGermanCatalogComplete(t *testing.T) {
	keys := []string{
		msgQuestionTitle, msgAskTitle, msgSearchTitle, msgEditTitle,
		msgAwaitModeration, msgNotAllowedRead, msgPublishedIn, msgNotPublishedYet,
		msgSomethingWrong, msgCannotEditAnswer, msgLoginRequired, msgCannotEditPost,
		msgTitleRequired, msgContentRequired, msgTooManyLogins, msgCannotAnswerHere,
		msgNotFoundTitle, msgServerErrorTitle, msgLoginTitle,
	}
	for _, k := range keys {
		if germanMessages[k] == "" {
			t.Errorf("no German message for %q", k)
		}
	}
}

func TestTranslatorRelTime(t *testing.T) {
	tr := NewTranslator("en")

	tests := []struct {
		tag  language.Tag
		d    time.Duration
		want string
	}{
		{language.English, 3 * time.Hour, "3 hours"},
		{language.English, time.Minute, "1 minute"},
		{language.English, 3 * 24 * time.Hour, "3 days"},
		{language.German, 3 * time.Hour, "3 Stunden"},
		{language.German, 90 * time.Minute, "1 Stunde"},
		{language.German, 3 * 24 * time.Hour, "3 Tagen"},
	}
	for _, tt := range tests {
		if got := tr.RelTime(tt.tag, testNow, testNow.Add(tt.d)); got != tt.want {
			t.Errorf("RelTime(%v, %v) = %q, want %q", tt.tag, tt.d, got, tt.want)
		}
	}
}
