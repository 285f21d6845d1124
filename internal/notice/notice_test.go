package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_DrainEmptiesInOrder(t *testing.T) {
	var b Buffer
	assert.Equal(t, []Notice{}, b.Drain())

	b.Notify(Notice{Level: Success, Title: "one"})
	b.Notify(Notice{Level: Error, Title: "two"})

	got := b.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "one", got[0].Title)
		assert.Equal(t, Error, got[1].Level)
	}
	assert.Empty(t, b.Drain())
}
