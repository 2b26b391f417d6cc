// Package report turns the tables of a finished wait-list run into
// something people read: a Summary with length-of-wait statistics, CSV and
// JSON files, and a Prometheus textfile of run metrics.
//
// Everything here is a pure function of *trace.Tables; no package in this
// directory touches the simulator.
package report
