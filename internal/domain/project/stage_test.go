package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageForProgress(t *testing.T) {
	tests := []struct {
		progress int
		stage    string
	}{
		{0, "Not Started"},
		{5, "Not Started"},
		{10, "Requirements Gathering"},
		{24, "Requirements Gathering"},
		{25, "Design"},
		{39, "Design"},
		{40, "Development - Initial"},
		{59, "Development - Initial"},
		{60, "Development - Advanced"},
		{74, "Development - Advanced"},
		{75, "Testing"},
		{89, "Testing"},
		{90, "Review"},
		{99, "Review"},
		{100, "Completed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.stage, StageForProgress(tt.progress), "progress %d", tt.progress)
	}
}

func TestStageForProgressClamps(t *testing.T) {
	assert.Equal(t, "Not Started", StageForProgress(-5))
	assert.Equal(t, "Completed", StageForProgress(150))
}

func TestProgressForStage(t *testing.T) {
	t.Run("round trips every stage", func(t *testing.T) {
		for _, s := range Stages() {
			progress, err := ProgressForStage(s.Name)
			require.NoError(t, err)
			assert.Equal(t, s.Threshold, progress)
			assert.Equal(t, s.Name, StageForProgress(progress))
		}
	})

	t.Run("unknown stage fails", func(t *testing.T) {
		_, err := ProgressForStage("Shipping")
		assert.Error(t, err)
	})
}

func TestStagesReturnsCopy(t *testing.T) {
	first := Stages()
	first[0].Name = "mutated"
	assert.Equal(t, "Not Started", Stages()[0].Name)
}
