package booking

import (
	"mrdoc/pkg/medtypes"
)

// Availability classifies how many slots a doctor has left.
type Availability string

// Availability tiers by remaining slots.
const (
	AvailabilityHigh    Availability = "high"
	AvailabilityLimited Availability = "medium"
	AvailabilityFew     Availability = "low"
	AvailabilityNone    Availability = "none"
)

// AvailabilityOf returns the tier for a doctor: more than 5 slots is high,
// more than 2 limited, any left is few, otherwise fully booked.
func AvailabilityOf(d medtypes.Doctor) Availability {
	switch {
	case d.AvailableSlots > 5:
		return AvailabilityHigh
	case d.AvailableSlots > 2:
		return AvailabilityLimited
	case d.AvailableSlots > 0:
		return AvailabilityFew
	default:
		return AvailabilityNone
	}
}

// Label is the human readable name of the tier.
func (a Availability) Label() string {
	switch a {
	case AvailabilityHigh:
		return "High Availability"
	case AvailabilityLimited:
		return "Limited Availability"
	case AvailabilityFew:
		return "Few Slots Left"
	default:
		return "Fully Booked"
	}
}

// Emoji is the traffic-light marker of the tier.
func (a Availability) Emoji() string {
	switch a {
	case AvailabilityHigh:
		return "🟢"
	case AvailabilityLimited:
		return "🟡"
	case AvailabilityFew:
		return "🟠"
	default:
		return "🔴"
	}
}

// AvailableDoctors returns the doctors that still have open slots.
func AvailableDoctors(doctors []medtypes.Doctor) []medtypes.Doctor {
	var out []medtypes.Doctor
	for _, d := range doctors {
		if d.AvailableSlots > 0 {
			out = append(out, d)
		}
	}
	return out
}

// FindDoctor returns the doctor with the given id.
func FindDoctor(doctors []medtypes.Doctor, id int) (medtypes.Doctor, bool) {
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return medtypes.Doctor{}, false
}
