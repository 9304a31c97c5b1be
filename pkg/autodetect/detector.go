package autodetect

import (
	"strings"
	"time"
	"unicode"
)

// Kind classifies a transcript line.
type Kind int

const (
	KindNone Kind = iota
	KindQuestion
	KindCodingTask
)

var questionPrefixes = []string{
	"what", "how", "why", "when", "where", "who", "which",
	"can you", "could you", "would you", "will you",
	"do you", "does", "did", "is it", "are there",
	"have you", "has anyone", "should", "shall",
	"tell me", "explain", "describe", "walk me through",
}

var codingPhrases = []string{
	"write a", "implement", "create a", "build a", "design a",
	"code a", "fix the", "debug", "refactor", "optimize", "solve",
	"find the bug", "what's wrong", "correct this", "modify",
	"update the", "add a", "remove the",
}

// Detect classifies a line of spoken text. Coding-task phrases win over
// question phrasing because they change what the client is asked to do
// (capture a screenshot instead of answering from context).
func Detect(text string) Kind {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return KindNone
	}
	// Normalize to lowercase words so phrases match on word boundaries
	// ("resolved" must not match "solve").
	normalized := " " + strings.Join(words(trimmed), " ") + " "

	for _, phrase := range codingPhrases {
		if strings.Contains(normalized, " "+phrase+" ") {
			return KindCodingTask
		}
	}

	if strings.HasSuffix(trimmed, "?") {
		return KindQuestion
	}
	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(normalized, " "+prefix+" ") {
			return KindQuestion
		}
	}

	return KindNone
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// IsQuestion reports whether the line reads as any kind of answerable
// prompt (question or coding task).
func IsQuestion(text string) bool {
	return Detect(text) != KindNone
}

// Detector applies the per-session trigger policy on top of Detect:
// a line only triggers when auto-detect is enabled, the cooldown has
// elapsed and the line meets the minimum word count.
type Detector struct {
	MinWords int
	Cooldown time.Duration
}

func NewDetector(minWords int, cooldown time.Duration) *Detector {
	if minWords <= 0 {
		minWords = 3
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Second
	}
	return &Detector{MinWords: minWords, Cooldown: cooldown}
}

// Evaluate returns the detected kind and whether the line should
// trigger, given the time of the last trigger on this session.
func (d *Detector) Evaluate(text string, lastTriggered time.Time, now time.Time) (Kind, bool) {
	if !lastTriggered.IsZero() && now.Sub(lastTriggered) < d.Cooldown {
		return KindNone, false
	}
	if len(strings.Fields(text)) < d.MinWords {
		return KindNone, false
	}

	kind := Detect(text)
	return kind, kind != KindNone
}
