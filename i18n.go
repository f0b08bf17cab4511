package askengine

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// User-facing strings. They double as catalog keys; English needs no entries.
const (
	msgQuestionTitle    = "Question"
	msgAskTitle         = "Ask a Question"
	msgSearchTitle      = "Search"
	msgEditTitle        = "Edit Answer"
	msgAwaitModeration  = "This question is awaiting moderation and cannot be viewed. Please check back later."
	msgNotAllowedRead   = "Sorry! you are not allowed to read this question."
	msgPublishedIn      = "Question will be published in %s"
	msgNotPublishedYet  = "This question is not published yet and is not accessible to anyone until it get published."
	msgSomethingWrong   = "Something went wrong, please try again"
	msgCannotEditAnswer = "Sorry, you cannot edit this answer."
	msgLoginRequired    = "You must be logged in to do that."
	msgCannotEditPost   = "Sorry, you cannot edit this question."
	msgTitleRequired    = "A title is required."
	msgContentRequired  = "Content is required."
	msgTooManyLogins    = "Too many login attempts. Try again later."
	msgCannotAnswerHere = "Answers cannot be added to this question."
	msgNotFoundTitle    = "Not Found"
	msgServerErrorTitle = "Server Error"
	msgLoginTitle       = "Log in"
)

var germanMessages = map[string]string{
	msgQuestionTitle:    "Frage",
	msgAskTitle:         "Eine Frage stellen",
	msgSearchTitle:      "Suche",
	msgEditTitle:        "Antwort bearbeiten",
	msgAwaitModeration:  "Diese Frage wartet auf Moderation und kann nicht angezeigt werden. Bitte schau später noch einmal vorbei.",
	msgNotAllowedRead:   "Entschuldigung! Du darfst diese Frage nicht lesen.",
	msgPublishedIn:      "Die Frage wird in %s veröffentlicht",
	msgNotPublishedYet:  "Diese Frage ist noch nicht veröffentlicht und bis zur Veröffentlichung für niemanden zugänglich.",
	msgSomethingWrong:   "Etwas ist schiefgelaufen, bitte versuche es erneut",
	msgCannotEditAnswer: "Entschuldigung, du kannst diese Antwort nicht bearbeiten.",
	msgLoginRequired:    "Dafür musst du angemeldet sein.",
	msgCannotEditPost:   "Entschuldigung, du kannst diese Frage nicht bearbeiten.",
	msgTitleRequired:    "Ein Titel ist erforderlich.",
	msgContentRequired:  "Inhalt ist erforderlich.",
	msgTooManyLogins:    "Zu viele Anmeldeversuche. Versuche es später erneut.",
	msgCannotAnswerHere: "Zu dieser Frage können keine Antworten hinzugefügt werden.",
	msgNotFoundTitle:    "Seite nicht gefunden",
	msgServerErrorTitle: "Serverfehler",
	msgLoginTitle:       "Anmelden",
}

// Relative time units per language. The label verb is always empty here,
// so German uses the dative forms that follow "in".
var (
	englishMagnitudes = []humanize.RelTimeMagnitude{
		{D: time.Second, Format: "now", DivBy: time.Second},
		{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
		{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
		{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
		{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
		{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
		{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
		{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
		{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
		{D: 2 * humanize.Week, Format: "1 week %s", DivBy: 1},
		{D: humanize.Month, Format: "%d weeks %s", DivBy: humanize.Week},
		{D: 2 * humanize.Month, Format: "1 month %s", DivBy: 1},
		{D: humanize.Year, Format: "%d months %s", DivBy: humanize.Month},
		{D: 18 * humanize.Month, Format: "1 year %s", DivBy: 1},
		{D: 2 * humanize.Year, Format: "2 years %s", DivBy: 1},
		{D: humanize.LongTime, Format: "%d years %s", DivBy: humanize.Year},
		{D: math.MaxInt64, Format: "a long while %s", DivBy: 1},
	}
	germanMagnitudes = []humanize.RelTimeMagnitude{
		{D: time.Second, Format: "jetzt", DivBy: time.Second},
		{D: 2 * time.Second, Format: "1 Sekunde %s", DivBy: 1},
		{D: time.Minute, Format: "%d Sekunden %s", DivBy: time.Second},
		{D: 2 * time.Minute, Format: "1 Minute %s", DivBy: 1},
		{D: time.Hour, Format: "%d Minuten %s", DivBy: time.Minute},
		{D: 2 * time.Hour, Format: "1 Stunde %s", DivBy: 1},
		{D: humanize.Day, Format: "%d Stunden %s", DivBy: time.Hour},
		{D: 2 * humanize.Day, Format: "1 Tag %s", DivBy: 1},
		{D: humanize.Week, Format: "%d Tagen %s", DivBy: humanize.Day},
		{D: 2 * humanize.Week, Format: "1 Woche %s", DivBy: 1},
		{D: humanize.Month, Format: "%d Wochen %s", DivBy: humanize.Week},
		{D: 2 * humanize.Month, Format: "1 Monat %s", DivBy: 1},
		{D: humanize.Year, Format: "%d Monaten %s", DivBy: humanize.Month},
		{D: 18 * humanize.Month, Format: "1 Jahr %s", DivBy: 1},
		{D: 2 * humanize.Year, Format: "2 Jahren %s", DivBy: 1},
		{D: humanize.LongTime, Format: "%d Jahren %s", DivBy: humanize.Year},
		{D: math.MaxInt64, Format: "sehr langer Zeit %s", DivBy: 1},
	}
)

// Translator resolves user-facing strings for a negotiated language.
type Translator struct {
	cat      *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// NewTranslator builds the message catalog. defaultLang is used when a
// request names no supported language.
func NewTranslator(defaultLang string) *Translator {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		fallback = language.English
	}
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range germanMessages {
		// SetString only fails on malformed tags.
		_ = cat.SetString(language.German, key, msg)
	}
	supported := []language.Tag{fallback}
	for _, t := range []language.Tag{language.English, language.German} {
		if t != fallback {
			supported = append(supported, t)
		}
	}
	return &Translator{
		cat:      cat,
		matcher:  language.NewMatcher(supported),
		fallback: fallback,
	}
}

// Match returns the supported language for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	matched, _ := language.MatchStrings(t.matcher, acceptLanguage)
	base, conf := matched.Base()
	if conf == language.No {
		return t.fallback
	}
	return language.Make(base.String())
}

// Printer returns a printer for tag.
func (t *Translator) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(t.cat))
}

// Default returns a printer for the default language.
func (t *Translator) Default() *message.Printer {
	return t.Printer(t.fallback)
}

// Fallback returns the default language.
func (t *Translator) Fallback() language.Tag {
	return t.fallback
}

// RelTime formats the distance between from and to in tag's language,
// e.g. "3 hours" or "3 Stunden".
func (t *Translator) RelTime(tag language.Tag, from, to time.Time) string {
	mags := englishMagnitudes
	if base, _ := tag.Base(); base.String() == "de" {
		mags = germanMagnitudes
	}
	return strings.TrimSpace(humanize.CustomRelTime(from, to, "", "", mags))
}

const (
	printerKey = "askengine.printer"
	langKey    = "askengine.lang"
)

// lang negotiates the request's language once per request.
func (a *App) lang(c echo.Context) language.Tag {
	if tag, ok := c.Get(langKey).(language.Tag); ok {
		return tag
	}
	tag := a.i18n.Match(c.Request().Header.Get("Accept-Language"))
	c.Set(langKey, tag)
	return tag
}

// printer returns the request's printer.
func (a *App) printer(c echo.Context) *message.Printer {
	if p, ok := c.Get(printerKey).(*message.Printer); ok {
		return p
	}
	p := a.i18n.Printer(a.lang(c))
	c.Set(printerKey, p)
	return p
}

// T translates key for the current request.
func (a *App) T(c echo.Context, key string, args ...any) string {
	return a.printer(c).Sprintf(key, args...)
}
