package sim

import "fmt"

// Process identifies one cooperatively scheduled activity (a generator, the
// replenisher, a patient journey). Rank orders a process's events against
// other processes' events at the same week; lower ranks run first.
type Process struct {
	Name string
	ID   int64 // domain identifier, e.g. the patient id; 0 for singleton processes
	Rank int
}

// NewProcess creates a Process handle.
func NewProcess(name string, id int64, rank int) *Process {
	return &Process{Name: name, ID: id, Rank: rank}
}

func (p *Process) String() string {
	if p == nil {
		return "<none>"
	}
	if p.ID != 0 {
		return fmt.Sprintf("%s#%d", p.Name, p.ID)
	}
	return p.Name
}
