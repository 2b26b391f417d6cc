package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/waitlist-sim/waitlist-sim/sim/waitlist"
)

// resolveParams builds the run parameters: the scenario file (or the
// defaults), then any flag or environment override that was actually set.
func resolveParams(v *viper.Viper) (waitlist.Params, error) {
	params := waitlist.DefaultParams()
	if path := v.GetString("config"); path != "" {
		var err error
		if params, err = waitlist.LoadScenario(path); err != nil {
			return waitlist.Params{}, err
		}
	}

	if v.IsSet("name") {
		params.Name = v.GetString("name")
	}
	if v.IsSet("seed") {
		params.Seed = v.GetInt64("seed")
	}
	if v.IsSet("rot-rate") {
		params.ROTRate = v.GetFloat64("rot-rate")
	}
	if v.IsSet("dna-rate") {
		params.DNARate = v.GetFloat64("dna-rate")
	}
	if v.IsSet("priority-weights") {
		w, err := parsePriorityWeights(v.GetString("priority-weights"))
		if err != nil {
			return waitlist.Params{}, err
		}
		params.Priorities = w
	}
	if v.IsSet("exit-weights") {
		w, err := parseExitWeights(v.GetString("exit-weights"))
		if err != nil {
			return waitlist.Params{}, err
		}
		params.Exits = w
	}

	if v.IsSet("weeks") {
		weeks := v.GetInt64("weeks")
		if weeks < 1 {
			return waitlist.Params{}, &waitlist.ConfigurationError{Field: "weeks", Reason: fmt.Sprintf("must be at least 1, got %d", weeks)}
		}
		params.Schedule = resizeSchedule(params.Schedule, weeks)
		params.RunTime = weeks
	}
	// Per-week counts apply to every simulated week.
	params.Schedule = slices.Clone(params.Schedule)
	for i := range params.Schedule {
		if v.IsSet("internal") {
			params.Schedule[i].Internal = v.GetInt("internal")
		}
		if v.IsSet("external") {
			params.Schedule[i].External = v.GetInt("external")
		}
		if v.IsSet("appointments") {
			params.Schedule[i].Appointments = v.GetInt("appointments")
		}
	}

	if err := params.Validate(); err != nil {
		return waitlist.Params{}, err
	}
	return params, nil
}

// resizeSchedule truncates s to weeks rows, or extends it by repeating its
// last row.
func resizeSchedule(s waitlist.WeeklySchedule, weeks int64) waitlist.WeeklySchedule {
	out := make(waitlist.WeeklySchedule, weeks)
	n := copy(out, s)
	if n == 0 {
		return out
	}
	for i := n; i < len(out); i++ {
		out[i] = s[n-1]
	}
	return out
}

// parsePairs splits "k1=v1,k2=v2" into keys and float weights.
func parsePairs(field, s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &waitlist.ConfigurationError{Field: field, Reason: fmt.Sprintf("expected key=weight, got %q", pair)}
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, &waitlist.ConfigurationError{Field: field, Reason: fmt.Sprintf("weight for %q: %v", key, err)}
		}
		out[strings.TrimSpace(key)] = w
	}
	return out, nil
}

func parsePriorityWeights(s string) (waitlist.PriorityWeights, error) {
	pairs, err := parsePairs("priority_weights", s)
	if err != nil {
		return nil, err
	}
	out := make(waitlist.PriorityWeights, len(pairs))
	for k, w := range pairs {
		tier, err := strconv.Atoi(k)
		if err != nil {
			return nil, &waitlist.ConfigurationError{Field: "priority_weights", Reason: fmt.Sprintf("tier %q is not a number", k)}
		}
		out[tier] = w
	}
	return out, nil
}

func parseExitWeights(s string) (waitlist.OutcomeWeights, error) {
	pairs, err := parsePairs("exit_weights", s)
	if err != nil {
		return nil, err
	}
	out := make(waitlist.OutcomeWeights, len(pairs))
	for k, w := range pairs {
		out[waitlist.ExitOutcome(k)] = w
	}
	return out, nil
}

func formatPriorityWeights(w waitlist.PriorityWeights) string {
	parts := make([]string, 0, len(w))
	for _, tier := range slices.Sorted(maps.Keys(w)) {
		parts = append(parts, fmt.Sprintf("%d=%g", tier, w[tier]))
	}
	return strings.Join(parts, ",")
}

func formatExitWeights(w waitlist.OutcomeWeights) string {
	parts := make([]string, 0, len(w))
	for _, outcome := range waitlist.ExitOutcomes {
		if weight, ok := w[outcome]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", outcome, weight))
		}
	}
	return strings.Join(parts, ",")
}
