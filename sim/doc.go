// Package sim provides the discrete-event kernel for the wait-list simulator.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - simulator.go: the event loop, week clock and horizon handling
//   - event.go: the event heap and its (week, priority, sequence) ordering
//   - gate.go: the capacity-1 priority admission gate
//   - pool.go: the replenishable appointment token pool
//
// # Processes
//
// There are no goroutines. A Process is a handle that owns a chain of
// continuations: every suspension point (Timeout, Gate.Admit, Pool.Take)
// takes the function to call when the process resumes, and the resume is
// delivered as a ResumeEvent ordered by the process's Rank. Same-week events
// therefore run in a fixed, reproducible order.
//
// # Sub-packages
//
//   - sim/waitlist/: the clinical wait-list model (patients, journeys, generators)
//   - sim/trace/: the append-only patient and occupancy recorder
//   - sim/report/: length-of-wait summaries, CSV/JSON export and run metrics
package sim
