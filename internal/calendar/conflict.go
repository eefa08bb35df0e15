package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// slotSearchAttempts bounds the next-free-slot search.
	slotSearchAttempts = 5
	// slotSearchStep is how far each attempt advances the proposal.
	slotSearchStep = time.Hour
)

// ErrConflict is returned when a proposed window collides with existing
// events and no alternative slot could be found. The caller decides what
// to do with the proposal.
var ErrConflict = errors.New("calendar conflict")

// FindConflicts returns the events that overlap the proposed window.
// A window fully inside an existing event is always a conflict.
func FindConflicts(window TimeRange, events []EventSummary) []EventSummary {
	var conflicts []EventSummary
	for _, e := range events {
		if e.Status == "cancelled" {
			continue
		}
		if window.Overlaps(TimeRange{Start: e.Start, End: e.End}) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}

// availabilityFunc reports whether a window starting at the given time is free.
type availabilityFunc func(ctx context.Context, start time.Time, duration time.Duration) (bool, error)

// nextAvailableSlot advances the proposed start in fixed steps until a free
// window is found or the attempt budget is exhausted.
func nextAvailableSlot(ctx context.Context, start time.Time, duration time.Duration, isFree availabilityFunc) (time.Time, error) {
	slot := start
	for i := 0; i < slotSearchAttempts; i++ {
		free, err := isFree(ctx, slot, duration)
		if err != nil {
			return time.Time{}, err
		}
		if free {
			return slot, nil
		}
		slot = slot.Add(slotSearchStep)
	}
	return time.Time{}, fmt.Errorf("no free slot within %d attempts: %w", slotSearchAttempts, ErrConflict)
}

// FindNextAvailableSlot searches the calendar for the first free window at or
// after the proposed start.
func (c *Client) FindNextAvailableSlot(ctx context.Context, start time.Time, duration time.Duration) (time.Time, error) {
	return nextAvailableSlot(ctx, start, duration, c.CheckAvailability)
}
