// Package google reads today's events from Google Calendar.
//
// Event titles become cards on the to-do list. Fetching is best effort: a
// failing calendar yields no titles rather than an error, so the rest of
// the board update still happens.
package google
