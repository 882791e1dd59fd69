package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of appointment dates.
const DateLayout = "2006-01-02"

// Slot is a bookable time of day.
type Slot struct {
	Value   string // HH:MM, as sent to the API
	Display string // 12-hour label
}

// TimeSlots returns the half-hour slots from 09:00 to 17:00 inclusive.
func TimeSlots() []Slot {
	var slots []Slot
	for hour := 9; hour <= 17; hour++ {
		for _, minute := range []string{"00", "30"} {
			if hour == 17 && minute == "30" {
				break
			}
			value := fmt.Sprintf("%02d:%s", hour, minute)
			slots = append(slots, Slot{Value: value, Display: FormatTime(value)})
		}
	}
	return slots
}

// IsValidSlot reports whether value is one of TimeSlots.
func IsValidSlot(value string) bool {
	for _, s := range TimeSlots() {
		if s.Value == value {
			return true
		}
	}
	return false
}

// FormatTime renders HH:MM as a 12-hour clock time, e.g. "14:30" -> "2:30 PM".
// Unparseable input is returned unchanged.
func FormatTime(value string) string {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return value
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return value
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], ampm)
}

// FormatDate renders YYYY-MM-DD in long form, e.g. "Friday, March 14, 2025".
// Unparseable input is returned unchanged.
func FormatDate(value string) string {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("Monday, January 2, 2006")
}

// TomorrowDate is the earliest bookable date relative to now.
func TomorrowDate(now time.Time) string {
	return now.AddDate(0, 0, 1).Format(DateLayout)
}
