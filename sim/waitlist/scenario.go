package waitlist

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario is the YAML form of Params. Omitted fields keep the values from
// DefaultParams. A scenario gives either an explicit schedule or weekly
// defaults expanded to a constant schedule of Weeks rows.
type Scenario struct {
	Name            string             `yaml:"name"`
	Seed            *int64             `yaml:"seed,omitempty"`
	Weeks           int64              `yaml:"weeks,omitempty"`
	ROTRate         *float64           `yaml:"rot_rate,omitempty"`
	DNARate         *float64           `yaml:"dna_rate,omitempty"`
	PriorityWeights map[int]float64    `yaml:"priority_weights,omitempty"`
	ExitWeights     map[string]float64 `yaml:"exit_weights,omitempty"`
	Defaults        *Week              `yaml:"defaults,omitempty"`
	Schedule        []Week             `yaml:"schedule,omitempty"`
}

// LoadScenario reads and parses a YAML scenario file and validates the
// resulting Params. Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses YAML scenario bytes into validated Params.
func ParseScenario(data []byte) (Params, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return Params{}, fmt.Errorf("parsing scenario: %w", err)
	}
	p, err := sc.Params()
	if err != nil {
		return Params{}, err
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Params overlays the scenario on DefaultParams.
func (sc *Scenario) Params() (Params, error) {
	if sc.Defaults != nil && len(sc.Schedule) > 0 {
		return Params{}, configErr("schedule", "give either defaults or schedule, not both")
	}
	if sc.Weeks < 0 {
		return Params{}, configErr("weeks", "must be non-negative, got %d", sc.Weeks)
	}
	p := DefaultParams()
	if sc.Name != "" {
		p.Name = sc.Name
	}
	if sc.Seed != nil {
		p.Seed = *sc.Seed
	}
	if sc.ROTRate != nil {
		p.ROTRate = *sc.ROTRate
	}
	if sc.DNARate != nil {
		p.DNARate = *sc.DNARate
	}
	if len(sc.PriorityWeights) > 0 {
		p.Priorities = PriorityWeights(sc.PriorityWeights)
	}
	if len(sc.ExitWeights) > 0 {
		p.Exits = make(OutcomeWeights, len(sc.ExitWeights))
		for k, v := range sc.ExitWeights {
			p.Exits[ExitOutcome(k)] = v
		}
	}

	switch {
	case len(sc.Schedule) > 0:
		p.Schedule = WeeklySchedule(sc.Schedule)
		p.RunTime = int64(len(sc.Schedule))
		if sc.Weeks > 0 {
			if sc.Weeks > p.RunTime {
				return Params{}, configErr("weeks", "is %d but schedule has only %d rows", sc.Weeks, p.RunTime)
			}
			p.RunTime = sc.Weeks
		}
	default:
		if sc.Weeks > 0 {
			p.RunTime = sc.Weeks
		}
		base := p.Schedule[0]
		if sc.Defaults != nil {
			base = *sc.Defaults
		}
		p.Schedule = ConstantSchedule(int(p.RunTime), base.Internal, base.External, base.Appointments)
	}
	logrus.Debugf("scenario %q: %d weeks, seed %d", p.Name, p.RunTime, p.Seed)
	return p, nil
}
