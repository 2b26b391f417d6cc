// Package waitlist models a clinical referral wait list on the sim kernel.
//
// Each week, in this order: the replenisher sets the appointment pool to the
// week's capacity, the internal and external referral generators spawn new
// patients, and the occupancy sampler records queue depth and pool size.
// Every patient then runs a journey: queue at the screening gate by clinical
// priority, take an appointment token while still holding the gate, re-queue
// once after a missed appointment, and exit as Discharge, Follow Up or
// Treatment. Patients whose trajectory says ROT leave at the gate without an
// appointment.
//
// All randomness for a patient is drawn once, at creation, into a Trajectory.
// A run with the same Params always produces the same tables.
package waitlist
