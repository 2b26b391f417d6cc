package waitlist

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams_Valid(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	assert.Equal(t, int64(52), p.RunTime)
	assert.Len(t, p.Schedule, 52)
	assert.Equal(t, Week{Internal: 10, External: 20, Appointments: 20}, p.Schedule[0])
}

func TestParams_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"zero run time", func(p *Params) { p.RunTime = 0 }, "run_time"},
		{"schedule too short", func(p *Params) { p.Schedule = p.Schedule[:10] }, "schedule"},
		{"negative internal", func(p *Params) { p.Schedule[3].Internal = -1 }, "schedule[3].internal"},
		{"negative external", func(p *Params) { p.Schedule[0].External = -2 }, "schedule[0].external"},
		{"negative capacity", func(p *Params) { p.Schedule[51].Appointments = -1 }, "schedule[51].appointments"},
		{"rot rate above one", func(p *Params) { p.ROTRate = 1.5 }, "rot_rate"},
		{"dna rate negative", func(p *Params) { p.DNARate = -0.1 }, "dna_rate"},
		{"dna rate NaN", func(p *Params) { p.DNARate = math.NaN() }, "dna_rate"},
		{"unknown tier", func(p *Params) { p.Priorities[4] = 1 }, "priority_weights"},
		{"negative priority weight", func(p *Params) { p.Priorities[1] = -1 }, "priority_weights"},
		{"all-zero priority weights", func(p *Params) { p.Priorities = PriorityWeights{1: 0, 2: 0} }, "priority_weights"},
		{"unknown outcome", func(p *Params) { p.Exits["Transfer"] = 1 }, "exit_weights"},
		{"infinite exit weight", func(p *Params) { p.Exits[Treatment] = math.Inf(1) }, "exit_weights"},
		{"empty exit weights", func(p *Params) { p.Exits = OutcomeWeights{} }, "exit_weights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigurationError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParams_Validate_ExtraScheduleRowsIgnored(t *testing.T) {
	// GIVEN a schedule longer than the run, with a bad row past the horizon
	p := DefaultParams()
	p.RunTime = 10
	p.Schedule[20].Internal = -5
	assert.NoError(t, p.Validate())
}

func TestParams_Validate_BoundaryRates(t *testing.T) {
	p := DefaultParams()
	p.ROTRate, p.DNARate = 0, 1
	assert.NoError(t, p.Validate())
}

func TestConstantSchedule(t *testing.T) {
	s := ConstantSchedule(3, 1, 2, 3)
	assert.Equal(t, WeeklySchedule{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}, s)
}
