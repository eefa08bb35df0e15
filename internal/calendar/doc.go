// Package calendar provides a client for the Google Calendar API used by the
// action dispatcher.
//
// It lists events in a window, detects conflicts between a proposed event and
// existing ones, searches for the next free slot, and creates events with
// reminders. Scheduling is last-write-wins: there is no transactional guard
// against other writers of the same calendar.
package calendar
