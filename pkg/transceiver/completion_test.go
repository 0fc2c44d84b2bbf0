package transceiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionQueueDropsWhenFull(t *testing.T) {
	q := NewCompletionQueue(2)
	assert.True(t, q.Post(Event{Token: 1}))
	assert.True(t, q.Post(Event{Token: 2}))
	assert.False(t, q.Post(Event{Token: 3}))
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 2, q.Len())

	var tokens []Token
	n := q.Drain(func(ev Event) { tokens = append(tokens, ev.Token) })
	assert.Equal(t, 2, n)
	assert.Equal(t, []Token{1, 2}, tokens)
	assert.Zero(t, q.Drain(func(Event) { t.Error("queue should be empty") }))
}

func TestCompletionQueueDefaultDepth(t *testing.T) {
	q := NewCompletionQueue(0)
	for i := range DefaultCompletionDepth {
		assert.True(t, q.Post(Event{Token: Token(i)}))
	}
	assert.False(t, q.Post(Event{}))
}
