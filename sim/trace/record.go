// Package trace provides the append-only result recorder for a wait-list run.
// The package depends on nothing else in sim/; it stores pure data types.
package trace

// PatientRecord is one snapshot of a patient. Several records may be appended
// for the same ID; the last one is authoritative.
type PatientRecord struct {
	ID           int64  `json:"patient_id"`
	ReferralType string `json:"referral_type"`
	ROT          bool   `json:"rot"`
	DNA          bool   `json:"dna"`
	Priority     int    `json:"priority"`
	WaitStart    int64  `json:"week_start"`
	SeenWeek     *int64 `json:"week_seen"` // nil until an appointment is consumed
	ROTWeek      *int64 `json:"rot_week"`  // set for every ROT patient from creation
	DNAWeek      *int64 `json:"dna_week"`  // nil unless the second appointment was taken
	Exit         string `json:"exit"`
}

// Unresolved reports whether the patient was neither seen nor removed.
func (r PatientRecord) Unresolved() bool {
	return r.SeenWeek == nil && r.ROTWeek == nil
}

// clone returns a copy that shares no pointers with r.
func (r PatientRecord) clone() PatientRecord {
	r.SeenWeek = CopyWeek(r.SeenWeek)
	r.ROTWeek = CopyWeek(r.ROTWeek)
	r.DNAWeek = CopyWeek(r.DNAWeek)
	return r
}

// OccupancySnapshot is the weekly state of the wait list.
type OccupancySnapshot struct {
	Week              int64 `json:"week"`
	QueueDepth        int   `json:"queue_length"`
	ScheduledCapacity int   `json:"apts_added"`
	PoolSize          int   `json:"apts_left"`
}

// Week returns a pointer to a copy of w, for populating optional week fields.
func Week(w int64) *int64 {
	return &w
}

// CopyWeek returns a pointer to a copy of *w, or nil if w is nil.
func CopyWeek(w *int64) *int64 {
	if w == nil {
		return nil
	}
	return Week(*w)
}
