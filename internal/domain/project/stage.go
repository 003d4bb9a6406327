package project

import "github.com/clientportal/backend/internal/domain/shared"

// Stage pairs a named project stage with the progress percentage at which it
// begins. The mapping is stepwise, not linear: a progress value between two
// thresholds resolves to the nearest lower stage.
type Stage struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// stages is ordered by ascending threshold. First entry must be 0 and last
// must be 100 so the mapping is total over [0,100].
var stages = []Stage{
	{Name: "Not Started", Threshold: 0},
	{Name: "Requirements Gathering", Threshold: 10},
	{Name: "Design", Threshold: 25},
	{Name: "Development - Initial", Threshold: 40},
	{Name: "Development - Advanced", Threshold: 60},
	{Name: "Testing", Threshold: 75},
	{Name: "Review", Threshold: 90},
	{Name: "Completed", Threshold: 100},
}

// Stages returns a copy of the ordered stage table
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// StageForProgress returns the highest-threshold stage whose threshold does
// not exceed the given progress. Out-of-range values are clamped.
func StageForProgress(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	name := stages[0].Name
	for _, s := range stages {
		if s.Threshold > progress {
			break
		}
		name = s.Name
	}
	return name
}

// ProgressForStage returns the threshold for a named stage. It is the exact
// inverse of the table lookup and fails on unknown names.
func ProgressForStage(name string) (int, error) {
	for _, s := range stages {
		if s.Name == name {
			return s.Threshold, nil
		}
	}
	return 0, shared.NewDomainError("INVALID_STAGE", "Unknown project stage: "+name)
}
