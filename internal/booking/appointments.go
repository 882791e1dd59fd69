// Package booking holds the client-side rules of the booking pages: appointment
// filters and counters, doctor availability, time slots and form validation.
package booking

import (
	"fmt"
	"strings"

	"mrdoc/pkg/medtypes"
)

// Filter selects which appointments are listed.
type Filter string

const (
	// FilterAll lists every appointment.
	FilterAll Filter = "all"
	// FilterActive lists appointments that are not cancelled.
	FilterActive Filter = "active"
	// FilterCancelled lists cancelled appointments only.
	FilterCancelled Filter = "cancelled"
)

// ParseFilter accepts all, active or cancelled (case-insensitive). Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCancelled:
		return FilterCancelled, nil
	default:
		return "", fmt.Errorf("unknown filter %q (expected all, active or cancelled)", s)
	}
}

// Apply returns the appointments matching the filter, preserving order.
func (f Filter) Apply(appointments []medtypes.Appointment) []medtypes.Appointment {
	out := make([]medtypes.Appointment, 0, len(appointments))
	for _, a := range appointments {
		switch f {
		case FilterActive:
			if a.IsCancelled {
				continue
			}
		case FilterCancelled:
			if !a.IsCancelled {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Stats counts appointments by state.
type Stats struct {
	Total     int
	Active    int
	Cancelled int
}

// ComputeStats tallies the appointment list.
func ComputeStats(appointments []medtypes.Appointment) Stats {
	stats := Stats{Total: len(appointments)}
	for _, a := range appointments {
		if a.IsCancelled {
			stats.Cancelled++
		} else {
			stats.Active++
		}
	}
	return stats
}

// EmptyMessage is the notice shown when a filter selects nothing.
func (f Filter) EmptyMessage() string {
	switch f {
	case FilterActive:
		return "No Active Appointments: there are no active appointments at the moment."
	case FilterCancelled:
		return "No Cancelled Appointments: no appointments have been cancelled yet."
	default:
		return "No Appointments Yet: book the first one with `mrdoc book`."
	}
}
