// Package policy holds the pure turn-level decision logic: which language to
// answer in, whether to greet, and when to ask for contact details. It does
// no I/O so the rules can be tested in isolation.
package policy

import (
	"regexp"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
)

// ContactState decides the contact-capture instruction for the current turn.
type ContactState int

const (
	// ContactAsk: no signal yet and we are still inside the capture window.
	ContactAsk ContactState = iota
	// ContactMissedWindow: no signal, but too late in the conversation to nag.
	ContactMissedWindow
	// ContactCaptured: we already asked, or the customer already gave a number.
	ContactCaptured
)

// Directives is the instruction bundle consumed by prompt assembly.
type Directives struct {
	Language Language
	Greet    bool
	Contact  ContactState
	// Turn is the 1-based user turn index including the current query.
	Turn int
}

// AskContact reports whether this turn should request name and phone.
func (d Directives) AskContact() bool {
	return d.Contact == ContactAsk
}

// Known gap: a bare 10-digit substring also matches prices and dates, so
// "provided" can false-positive. Kept as-is to match production behaviour.
var (
	phonePlainRe  = regexp.MustCompile(`\d{10}`)
	phoneDashedRe = regexp.MustCompile(`\d{3}[-\s]\d{3}[-\s]\d{4}`)
)

// askWindowTurns is how many user turns we allow ourselves to request
// contact details. After that the moment has passed.
const askWindowTurns = 2

// DetectLanguage classifies a query as Hindi or English. Any Devanagari code
// point means Hindi; everything else (including Kannada, Urdu, Hinglish in
// Latin script) defaults to English.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return LanguageHindi
		}
	}
	return LanguageEnglish
}

// Evaluate derives the turn directives from the current query and the
// conversation so far. The current query is not expected to be in history yet.
func Evaluate(query string, history []Message) Directives {
	d := Directives{
		Language: DetectLanguage(query),
		Greet:    len(history) == 0,
	}

	userTurns := 0
	asked := false
	provided := false

	for _, msg := range history {
		switch msg.Role {
		case RoleUser:
			userTurns++
			if phonePlainRe.MatchString(msg.Text) || phoneDashedRe.MatchString(msg.Text) {
				provided = true
			}
		case RoleAssistant:
			lower := strings.ToLower(msg.Text)
			if (strings.Contains(lower, "name") && strings.Contains(lower, "phone")) ||
				(strings.Contains(lower, "naam") && strings.Contains(lower, "number")) {
				asked = true
			}
		}
	}

	d.Turn = userTurns + 1

	switch {
	case asked || provided:
		d.Contact = ContactCaptured
	case d.Turn <= askWindowTurns:
		d.Contact = ContactAsk
	default:
		d.Contact = ContactMissedWindow
	}

	return d
}
