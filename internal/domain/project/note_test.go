package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNote(t *testing.T) {
	t.Run("valid note", func(t *testing.T) {
		n, err := NewNote(1, 2, "Kickoff scheduled for Monday")
		require.NoError(t, err)
		assert.Equal(t, uint(1), n.ProjectID)
		assert.Equal(t, uint(2), n.AuthorID)
		assert.Nil(t, n.EditedAt)
	})

	t.Run("rejects blank content", func(t *testing.T) {
		_, err := NewNote(1, 2, "   ")
		assert.Error(t, err)
	})

	t.Run("rejects oversized content", func(t *testing.T) {
		_, err := NewNote(1, 2, strings.Repeat("a", 10001))
		assert.Error(t, err)
	})

	t.Run("requires project and author", func(t *testing.T) {
		_, err := NewNote(0, 2, "content")
		assert.Error(t, err)
		_, err = NewNote(1, 0, "content")
		assert.Error(t, err)
	})
}

func TestNoteEdit(t *testing.T) {
	n, err := NewNote(1, 2, "original")
	require.NoError(t, err)

	require.NoError(t, n.Edit("revised"))
	assert.Equal(t, "revised", n.Content)
	assert.NotNil(t, n.EditedAt)

	assert.Error(t, n.Edit(""))
}

func TestNoteCanModify(t *testing.T) {
	n, err := NewNote(1, 2, "content")
	require.NoError(t, err)

	assert.True(t, n.CanModify(2, false), "author may modify")
	assert.True(t, n.CanModify(99, true), "admin may modify")
	assert.False(t, n.CanModify(3, false), "other customers may not")
}
