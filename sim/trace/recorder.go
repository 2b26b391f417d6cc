package trace

import "sort"

// Tables holds the two output tables of a run.
type Tables struct {
	RunID     string              `json:"run_id"`
	Horizon   int64               `json:"horizon"`
	Patients  []PatientRecord     `json:"patients"`  // one per ID, ascending ID
	Occupancy []OccupancySnapshot `json:"occupancy"` // one per week, ascending week
}

// Recorder collects patient snapshots and weekly occupancy during a run.
// Both logs are append-only until Flush.
type Recorder struct {
	patients  []PatientRecord
	occupancy []OccupancySnapshot
	flushed   bool
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{
		patients:  make([]PatientRecord, 0),
		occupancy: make([]OccupancySnapshot, 0),
	}
}

// RecordPatient appends a patient snapshot. The record is copied, so later
// changes to the caller's values do not alter it.
func (r *Recorder) RecordPatient(record PatientRecord) {
	r.mustBeOpen()
	r.patients = append(r.patients, record.clone())
}

// RecordOccupancy appends a weekly occupancy snapshot.
func (r *Recorder) RecordOccupancy(snap OccupancySnapshot) {
	r.mustBeOpen()
	r.occupancy = append(r.occupancy, snap)
}

// PatientLog returns every patient snapshot in append order.
// The returned slice MUST NOT be modified.
func (r *Recorder) PatientLog() []PatientRecord {
	return r.patients
}

// Flush closes the recorder and returns the deduplicated tables.
// Further Record calls panic.
func (r *Recorder) Flush(horizon int64) *Tables {
	r.mustBeOpen()
	r.flushed = true
	return &Tables{
		Horizon:   horizon,
		Patients:  LatestByID(r.patients),
		Occupancy: append([]OccupancySnapshot(nil), r.occupancy...),
	}
}

func (r *Recorder) mustBeOpen() {
	if r.flushed {
		panic("Recorder: record after Flush")
	}
}

// LatestByID keeps the last record for each patient ID and returns them in
// ascending ID order.
func LatestByID(log []PatientRecord) []PatientRecord {
	latest := make(map[int64]PatientRecord, len(log))
	for _, rec := range log {
		latest[rec.ID] = rec
	}
	out := make([]PatientRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
