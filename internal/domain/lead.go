package domain

import "time"

// Stage is the lifecycle stage of a lead
type Stage string

const (
	StageVisitor Stage = "VISITOR"
	StageMQL     Stage = "MQL"
	StageSQL     Stage = "SQL"
	StageHVP     Stage = "HVP"
)

// Stages lists every stage in ascending order
var Stages = []Stage{StageVisitor, StageMQL, StageSQL, StageHVP}

// Rank orders stages from VISITOR (0) to HVP (3). Unknown stages rank -1.
func (s Stage) Rank() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return s.Rank() >= 0
}

// Lead is the authoritative per-visitor record
type Lead struct {
	ID          string
	AnonymousID string
	Email       *string
	LeadScore   int
	Stage       Stage
	CreatedAt   time.Time
	LastSeen    time.Time
}

// HasEmail reports whether the lead carries a non-empty email
func (l *Lead) HasEmail() bool {
	return l.Email != nil && *l.Email != ""
}
