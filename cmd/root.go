package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/waitlist-sim/waitlist-sim/sim/report"
	"github.com/waitlist-sim/waitlist-sim/sim/waitlist"
)

// envPrefix namespaces environment overrides, e.g. WAITLIST_SEED=7.
const envPrefix = "WAITLIST"

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "waitlist-sim",
	Short: "Discrete-event simulator for clinical referral wait lists",
}

// runCmd executes one simulation using a scenario file, flags and environment
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wait-list simulation",
	Run: func(cmd *cobra.Command, args []string) {
		v, err := newConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("binding configuration: %v", err)
		}

		// Set up logging
		logLevel := v.GetString("log")
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		startTime := time.Now()
		if err := runSimulation(v, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// addRunFlags registers the run flags on fs. Defaults mirror
// waitlist.DefaultParams; a flag only overrides the scenario when it is set.
func addRunFlags(fs *pflag.FlagSet) {
	def := waitlist.DefaultParams()
	row := def.Schedule[0]

	fs.String("config", "", "Scenario YAML file (defaults are used when empty)")
	fs.String("name", def.Name, "Run name, used in logs and the run ID")
	fs.Int64("seed", def.Seed, "Seed for patient trajectories")
	fs.Int64("weeks", def.RunTime, "Number of weeks to simulate")
	fs.Int("internal", row.Internal, "Internal referrals per week")
	fs.Int("external", row.External, "External referrals per week")
	fs.Int("appointments", row.Appointments, "Appointments available per week")
	fs.Float64("rot-rate", def.ROTRate, "Probability a patient is removed from the list (ROT)")
	fs.Float64("dna-rate", def.DNARate, "Probability a patient misses their first appointment (DNA)")
	fs.String("priority-weights", formatPriorityWeights(def.Priorities), "Priority tier weights as tier=weight pairs")
	fs.String("exit-weights", formatExitWeights(def.Exits), "Exit outcome weights as outcome=weight pairs")
	fs.String("log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	fs.String("patients-out", "", "Write the patient table as CSV to this path")
	fs.String("occupancy-out", "", "Write the weekly occupancy table as CSV to this path")
	fs.String("summary-out", "", "Write the run summary as JSON to this path")
	fs.String("metrics-out", "", "Write run metrics in Prometheus text format to this path")
}

// newConfig layers environment variables (WAITLIST_ROT_RATE, ...) under the
// flags in fs.
func newConfig(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

// runSimulation resolves the parameters, runs the model, writes every
// requested output and prints the summary to out.
func runSimulation(v *viper.Viper, out io.Writer) error {
	params, err := resolveParams(v)
	if err != nil {
		return err
	}
	logrus.Infof("Starting simulation %q: %d weeks, seed=%d, rot=%.3f, dna=%.3f",
		params.Name, params.RunTime, params.Seed, params.ROTRate, params.DNARate)

	model, err := waitlist.NewModel(params)
	if err != nil {
		return err
	}
	tables, err := model.Run()
	if err != nil {
		return err
	}
	summary := report.Summarize(tables)

	if err := report.WriteFile(v.GetString("patients-out"), func(w io.Writer) error {
		return report.WritePatientsCSV(w, tables)
	}); err != nil {
		return err
	}
	if err := report.WriteFile(v.GetString("occupancy-out"), func(w io.Writer) error {
		return report.WriteOccupancyCSV(w, summary.Weekly)
	}); err != nil {
		return err
	}
	if err := report.WriteFile(v.GetString("summary-out"), func(w io.Writer) error {
		return report.WriteSummaryJSON(w, summary)
	}); err != nil {
		return err
	}
	if path := v.GetString("metrics-out"); path != "" {
		if err := report.WriteMetrics(path, tables); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	summary.Print(out)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}
