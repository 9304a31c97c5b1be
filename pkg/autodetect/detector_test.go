package autodetect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Kind
	}{
		{"question word prefix", "What is a closure?", KindQuestion},
		{"question mark suffix", "The deadline is Friday, right?", KindQuestion},
		{"coding task", "Write a function to reverse a string", KindCodingTask},
		{"plain statement", "This is fine.", KindNone},
		{"empty", "", KindNone},
		{"whitespace", "   ", KindNone},
		{"how prefix", "how does the cache invalidation work", KindQuestion},
		{"explain prefix", "explain the deployment process", KindQuestion},
		{"debug phrase mid-sentence", "can you debug this stack trace", KindCodingTask},
		{"word boundary not substring", "the issue was resolved yesterday", KindNone},
		{"coding wins over question", "Can you implement a binary search?", KindCodingTask},
		{"case insensitive", "WHAT TIME IS THE MEETING", KindQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.text))
		})
	}
}

func TestIsQuestion(t *testing.T) {
	assert.True(t, IsQuestion("What is a closure?"))
	assert.True(t, IsQuestion("Write a function to reverse a string"))
	assert.False(t, IsQuestion("This is fine."))
}

func TestEvaluateMinWords(t *testing.T) {
	d := NewDetector(3, 15*time.Second)

	_, triggered := d.Evaluate("What now?", time.Time{}, time.Now())
	assert.False(t, triggered)

	kind, triggered := d.Evaluate("What is a closure?", time.Time{}, time.Now())
	assert.True(t, triggered)
	assert.Equal(t, KindQuestion, kind)
}

func TestEvaluateCooldown(t *testing.T) {
	d := NewDetector(3, 15*time.Second)
	now := time.Now()

	_, triggered := d.Evaluate("What is a closure?", now.Add(-5*time.Second), now)
	assert.False(t, triggered)

	_, triggered = d.Evaluate("What is a closure?", now.Add(-16*time.Second), now)
	assert.True(t, triggered)
}

func TestEvaluateNonQuestionDoesNotTrigger(t *testing.T) {
	d := NewDetector(3, 15*time.Second)

	kind, triggered := d.Evaluate("We shipped the feature yesterday", time.Time{}, time.Now())
	assert.False(t, triggered)
	assert.Equal(t, KindNone, kind)
}

func TestNewDetectorDefaults(t *testing.T) {
	d := NewDetector(0, 0)
	assert.Equal(t, 3, d.MinWords)
	assert.Equal(t, 15*time.Second, d.Cooldown)
}
