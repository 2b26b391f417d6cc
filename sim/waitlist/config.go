package waitlist

import (
	"fmt"
	"math"
	"slices"
)

// ExitOutcome classifies where a patient goes after the wait list.
type ExitOutcome string

const (
	Discharge ExitOutcome = "Discharge"
	FollowUp  ExitOutcome = "Follow Up" // onto the follow-up wait list
	Treatment ExitOutcome = "Treatment" // onto the day-case list
)

// ExitOutcomes lists the valid outcomes in sampling order.
var ExitOutcomes = []ExitOutcome{Discharge, FollowUp, Treatment}

// ReferralType records which generator spawned a patient.
type ReferralType string

const (
	Internal ReferralType = "Internal"
	External ReferralType = "External"
)

// Clinical priority tiers. Lower values are admitted first.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// PriorityTiers lists the valid priority tiers.
var PriorityTiers = []int{PriorityHigh, PriorityMedium, PriorityLow}

// Week is one row of the weekly schedule.
type Week struct {
	Internal     int `yaml:"internal" json:"internal"`
	External     int `yaml:"external" json:"external"`
	Appointments int `yaml:"appointments" json:"appointments"`
}

// WeeklySchedule holds one row per simulated week, starting at week 0.
type WeeklySchedule []Week

// ConstantSchedule repeats the same row for the given number of weeks.
func ConstantSchedule(weeks int, internal, external, appointments int) WeeklySchedule {
	s := make(WeeklySchedule, weeks)
	for i := range s {
		s[i] = Week{Internal: internal, External: external, Appointments: appointments}
	}
	return s
}

// PriorityWeights maps a priority tier to a relative sampling weight.
type PriorityWeights map[int]float64

// OutcomeWeights maps an exit outcome to a relative sampling weight.
type OutcomeWeights map[ExitOutcome]float64

// Params is the full input of one run.
type Params struct {
	Name       string
	Seed       int64
	RunTime    int64   // horizon in weeks; weeks 0..RunTime-1 are simulated
	ROTRate    float64 // probability a patient is removed from the list
	DNARate    float64 // probability a patient misses their first appointment
	Schedule   WeeklySchedule
	Priorities PriorityWeights
	Exits      OutcomeWeights
}

// DefaultParams returns the reference configuration: a year of 10 internal
// and 20 external referrals against 20 appointments a week.
func DefaultParams() Params {
	return Params{
		Name:     "default",
		Seed:     42,
		RunTime:  52,
		ROTRate:  0.03,
		DNARate:  0.05,
		Schedule: ConstantSchedule(52, 10, 20, 20),
		Priorities: PriorityWeights{
			PriorityHigh:   0.15,
			PriorityMedium: 0.35,
			PriorityLow:    0.50,
		},
		Exits: OutcomeWeights{
			Discharge: 40,
			FollowUp:  30,
			Treatment: 30,
		},
	}
}

// ConfigurationError reports an input that cannot be simulated.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that the parameters describe a runnable simulation.
// Returns a *ConfigurationError for the first problem found.
func (p Params) Validate() error {
	if p.RunTime < 1 {
		return configErr("run_time", "must be at least 1 week, got %d", p.RunTime)
	}
	if int64(len(p.Schedule)) < p.RunTime {
		return configErr("schedule", "has %d weeks, run needs %d", len(p.Schedule), p.RunTime)
	}
	for i, w := range p.Schedule[:p.RunTime] {
		prefix := fmt.Sprintf("schedule[%d]", i)
		if w.Internal < 0 {
			return configErr(prefix+".internal", "must be non-negative, got %d", w.Internal)
		}
		if w.External < 0 {
			return configErr(prefix+".external", "must be non-negative, got %d", w.External)
		}
		if w.Appointments < 0 {
			return configErr(prefix+".appointments", "must be non-negative, got %d", w.Appointments)
		}
	}
	if err := validateRate("rot_rate", p.ROTRate); err != nil {
		return err
	}
	if err := validateRate("dna_rate", p.DNARate); err != nil {
		return err
	}
	for tier := range p.Priorities {
		if !slices.Contains(PriorityTiers, tier) {
			return configErr("priority_weights", "unknown tier %d; valid: 1, 2, 3", tier)
		}
	}
	if err := validateWeights("priority_weights", p.Priorities); err != nil {
		return err
	}
	for outcome := range p.Exits {
		if !slices.Contains(ExitOutcomes, outcome) {
			return configErr("exit_weights", "unknown outcome %q; valid: Discharge, Follow Up, Treatment", outcome)
		}
	}
	return validateWeights("exit_weights", p.Exits)
}

func validateRate(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return configErr(field, "must be a probability in [0, 1], got %v", v)
	}
	return nil
}

func validateWeights[K comparable](field string, weights map[K]float64) error {
	total := 0.0
	for k, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return configErr(field, "weight for %v must be a finite non-negative number, got %v", k, w)
		}
		total += w
	}
	if total <= 0 {
		return configErr(field, "weights must have a positive sum")
	}
	return nil
}
