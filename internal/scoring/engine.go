package scoring

import "github.com/Ceir-Ceir/Tanami-Leki/internal/domain"

// Result is the outcome of applying points to a lead
type Result struct {
	NewScore     int
	NewStage     domain.Stage
	StageChanged bool
}

// Engine maps (score, points) to a new score and stage. It performs no I/O.
type Engine struct {
	thresholds []Threshold
	milestone  domain.Stage
}

// NewEngine creates an engine from a validated policy
func NewEngine(policy *Policy) *Engine {
	thresholds := make([]Threshold, len(policy.Thresholds))
	copy(thresholds, policy.Thresholds)

	return &Engine{
		thresholds: thresholds,
		milestone:  policy.MilestoneStage,
	}
}

// ComputeStage evaluates thresholds top-down on score. Below every threshold
// the current stage is kept, and a lower threshold never demotes the lead.
func (e *Engine) ComputeStage(score int, current domain.Stage) domain.Stage {
	for _, t := range e.thresholds {
		if score >= t.MinScore {
			if t.Stage.Rank() < current.Rank() {
				return current
			}
			return t.Stage
		}
	}
	return current
}

// Apply adds points (which may be negative) to score without clamping
func (e *Engine) Apply(score int, stage domain.Stage, points int) Result {
	newScore := score + points
	newStage := e.ComputeStage(newScore, stage)

	return Result{
		NewScore:     newScore,
		NewStage:     newStage,
		StageChanged: newStage != stage,
	}
}

// ReachedMilestone reports whether this result escalated the lead to the
// milestone stage during this call
func (e *Engine) ReachedMilestone(r Result) bool {
	return r.StageChanged && r.NewStage == e.milestone
}
