package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// CSV column headers for the patient table.
var patientColumns = []string{
	"patient_id", "referral_type", "rot", "dna", "priority",
	"week_start", "week_seen", "rot_week", "dna_week", "exit", "length_of_wait",
}

// CSV column headers for the weekly occupancy table.
var occupancyColumns = []string{
	"week", "queue_length", "apts_added", "apts_left", "seen", "rot", "dna",
}

// WritePatientsCSV writes one row per patient. Weeks that have not happened
// and the length of wait of ROT patients are left empty.
func WritePatientsCSV(w io.Writer, t *trace.Tables) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(patientColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range t.Patients {
		low := ""
		if weeks, ok := LengthOfWait(r, t.Horizon); ok {
			low = strconv.FormatInt(weeks, 10)
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.ReferralType,
			strconv.FormatBool(r.ROT),
			strconv.FormatBool(r.DNA),
			strconv.Itoa(r.Priority),
			strconv.FormatInt(r.WaitStart, 10),
			formatWeek(r.SeenWeek),
			formatWeek(r.ROTWeek),
			formatWeek(r.DNAWeek),
			r.Exit,
			low,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteOccupancyCSV writes one row per simulated week.
func WriteOccupancyCSV(w io.Writer, rows []WeeklyRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(occupancyColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			strconv.FormatInt(r.Week, 10),
			strconv.Itoa(r.QueueDepth),
			strconv.Itoa(r.ScheduledCapacity),
			strconv.Itoa(r.PoolSize),
			strconv.Itoa(r.Seen),
			strconv.Itoa(r.Removed),
			strconv.Itoa(r.SecondVisits),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for week %d: %w", r.Week, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WriteFile creates path and fills it with write. An empty path is a no-op.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logrus.Debugf("wrote %s", path)
	return nil
}

func formatWeek(w *int64) string {
	if w == nil {
		return ""
	}
	return strconv.FormatInt(*w, 10)
}
