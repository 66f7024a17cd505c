package scoring

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// Threshold promotes a lead to Stage once its score reaches MinScore
type Threshold struct {
	Stage    domain.Stage `yaml:"stage"`
	MinScore int          `yaml:"min_score"`
}

// Policy is the tunable part of lead scoring: stage thresholds, daily capped
// event types and the CRM naming of stages.
type Policy struct {
	Thresholds        []Threshold             `yaml:"thresholds"`
	DailyCappedEvents []string                `yaml:"daily_capped_events"`
	IdentifyEvent     string                  `yaml:"identify_event"`
	StageTags         map[domain.Stage]string `yaml:"stage_tags"`
	MilestoneStage    domain.Stage            `yaml:"milestone_stage"`
	MilestoneMetric   string                  `yaml:"milestone_metric"`
}

// DefaultPolicy returns the production scoring rules
func DefaultPolicy() *Policy {
	return &Policy{
		Thresholds: []Threshold{
			{Stage: domain.StageHVP, MinScore: 150},
			{Stage: domain.StageSQL, MinScore: 100},
			{Stage: domain.StageMQL, MinScore: 50},
		},
		DailyCappedEvents: []string{
			"view_calculator",
			"view_contact",
			"view_far_page",
			"click_15_day_ride",
		},
		IdentifyEvent: "identify",
		StageTags: map[domain.Stage]string{
			domain.StageVisitor: "LEKI_STAGE_VISITOR",
			domain.StageMQL:     "LEKI_STAGE_MQL",
			domain.StageSQL:     "LEKI_STAGE_SQL",
			domain.StageHVP:     "LEKI_STAGE_HVP",
		},
		MilestoneStage:  domain.StageHVP,
		MilestoneMetric: "leki_hvp",
	}
}

// LoadPolicy reads a YAML policy file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring policy: %w", err)
	}

	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse scoring policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring policy: %w", err)
	}

	return policy, nil
}

// Validate checks the policy and sorts thresholds from highest to lowest score
func (p *Policy) Validate() error {
	if len(p.Thresholds) == 0 {
		return errors.New("at least one threshold is required")
	}

	seen := make(map[domain.Stage]bool, len(p.Thresholds))
	for _, t := range p.Thresholds {
		if !t.Stage.Valid() {
			return fmt.Errorf("unknown stage %q", t.Stage)
		}
		if seen[t.Stage] {
			return fmt.Errorf("duplicate threshold for stage %s", t.Stage)
		}
		seen[t.Stage] = true
	}

	sort.SliceStable(p.Thresholds, func(i, j int) bool {
		return p.Thresholds[i].MinScore > p.Thresholds[j].MinScore
	})

	for i := 1; i < len(p.Thresholds); i++ {
		if p.Thresholds[i].Stage.Rank() >= p.Thresholds[i-1].Stage.Rank() {
			return fmt.Errorf("stage %s must require a lower score than %s",
				p.Thresholds[i].Stage, p.Thresholds[i-1].Stage)
		}
	}

	if !p.MilestoneStage.Valid() {
		return fmt.Errorf("unknown milestone stage %q", p.MilestoneStage)
	}

	return nil
}

// IsDailyCapped reports whether eventType may be scored at most once per day
func (p *Policy) IsDailyCapped(eventType string) bool {
	for _, capped := range p.DailyCappedEvents {
		if capped == eventType {
			return true
		}
	}
	return false
}

func (p *Policy) IsIdentify(eventType string) bool {
	return p.IdentifyEvent != "" && eventType == p.IdentifyEvent
}

// StageTag returns the CRM tag name for stage, or "" if none is configured
func (p *Policy) StageTag(stage domain.Stage) string {
	return p.StageTags[stage]
}

// MinScore returns the threshold score for stage
func (p *Policy) MinScore(stage domain.Stage) (int, bool) {
	for _, t := range p.Thresholds {
		if t.Stage == stage {
			return t.MinScore, true
		}
	}
	return 0, false
}
