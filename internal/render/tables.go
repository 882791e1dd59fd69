package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mrdoc/internal/booking"
	"mrdoc/pkg/medtypes"
)

// cellWidth caps free-text columns.
const cellWidth = 28

func (r *Renderer) table(headers []string, rows [][]string) string {
	t := table.New().Headers(headers...).Rows(rows...)
	if r.plain {
		return t.Border(lipgloss.ASCIIBorder()).String()
	}

	header := r.theme.Header.Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.theme.Muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

// Doctors renders the doctor directory.
func (r *Renderer) Doctors(doctors []medtypes.Doctor) string {
	if len(doctors) == 0 {
		return r.Notice("No doctors registered yet: add one with `mrdoc doctors add`.")
	}

	rows := make([][]string, 0, len(doctors))
	for _, d := range doctors {
		tier := booking.AvailabilityOf(d)
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			truncate(d.Name, cellWidth),
			truncate(d.Specialty, cellWidth),
			truncate(d.Email, cellWidth),
			fmt.Sprintf("%d/%d", d.AvailableSlots, d.SlotsPerDay),
			tier.Emoji() + " " + tier.Label(),
		})
	}
	return r.table([]string{"ID", "Name", "Specialty", "Email", "Slots", "Availability"}, rows)
}

// Doctor renders a single doctor card.
func (r *Renderer) Doctor(d medtypes.Doctor) string {
	tier := booking.AvailabilityOf(d)
	lines := []string{
		r.paint(r.theme.Highlight, d.Name),
		fmt.Sprintf("Specialty:    %s", d.Specialty),
		fmt.Sprintf("Email:        %s", d.Email),
		fmt.Sprintf("Slots:        %d of %d available", d.AvailableSlots, d.SlotsPerDay),
		fmt.Sprintf("Availability: %s %s", tier.Emoji(), tier.Label()),
	}
	return strings.Join(lines, "\n")
}

// Availability renders one line per doctor with its tier marker, listing
// doctors with open slots first.
func (r *Renderer) Availability(doctors []medtypes.Doctor) string {
	if len(doctors) == 0 {
		return r.Notice("No doctors registered yet.")
	}

	open := booking.AvailableDoctors(doctors)
	lines := []string{r.paint(r.theme.Highlight, fmt.Sprintf("%d of %d doctors have open slots", len(open), len(doctors)))}
	for _, d := range doctors {
		tier := booking.AvailabilityOf(d)
		line := fmt.Sprintf("%s %s (%s): %d/%d slots, %s",
			tier.Emoji(), d.Name, d.Specialty, d.AvailableSlots, d.SlotsPerDay, tier.Label())
		if tier == booking.AvailabilityNone {
			line = r.paint(r.theme.Muted, line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Appointments renders the appointment ledger after applying filter, followed
// by the counters of the unfiltered list.
func (r *Renderer) Appointments(appointments []medtypes.Appointment, filter booking.Filter) string {
	stats := r.Stats(booking.ComputeStats(appointments))
	selected := filter.Apply(appointments)
	if len(selected) == 0 {
		return r.Notice(filter.EmptyMessage()) + "\n" + stats
	}

	rows := make([][]string, 0, len(selected))
	for _, a := range selected {
		status := "Active"
		if a.IsCancelled {
			status = "Cancelled"
		}
		rows = append(rows, []string{
			strconv.Itoa(a.ID),
			truncate(a.PatientName, cellWidth),
			truncate(a.DoctorName, cellWidth),
			truncate(a.DoctorSpecialty, cellWidth),
			booking.FormatDate(a.AppointmentDate),
			booking.FormatTime(a.TimeSlot),
			status,
		})
	}
	headers := []string{"ID", "Patient", "Doctor", "Specialty", "Date", "Time", "Status"}
	return r.table(headers, rows) + "\n" + stats
}

// Stats renders the appointment counters.
func (r *Renderer) Stats(s booking.Stats) string {
	return r.paint(r.theme.Muted, fmt.Sprintf("Total: %d | Active: %d | Cancelled: %d", s.Total, s.Active, s.Cancelled))
}

// Appointment renders a confirmation for one appointment.
func (r *Renderer) Appointment(a medtypes.Appointment) string {
	return fmt.Sprintf("#%d %s with %s (%s) on %s at %s",
		a.ID, a.PatientName, a.DoctorName, a.DoctorSpecialty,
		booking.FormatDate(a.AppointmentDate), booking.FormatTime(a.TimeSlot))
}

// Slots renders the bookable time slots as a compact grid.
func (r *Renderer) Slots() string {
	slots := booking.TimeSlots()
	var b strings.Builder
	for i, s := range slots {
		b.WriteString(fmt.Sprintf("%-5s %-9s", s.Value, "("+s.Display+")"))
		if (i+1)%4 == 0 || i == len(slots)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Suggestion renders a suggest-doctors response. Known shapes become a doctor
// table; anything else is shown as indented JSON.
func (r *Renderer) Suggestion(raw json.RawMessage) string {
	var known struct {
		Specialty string            `json:"specialty"`
		Doctors   []medtypes.Doctor `json:"doctors"`
	}
	if err := json.Unmarshal(raw, &known); err == nil && known.Doctors != nil {
		if len(known.Doctors) == 0 {
			return r.Notice("No available doctors match that condition.")
		}
		header := fmt.Sprintf("Suggested %s doctors:", known.Specialty)
		if known.Specialty == "" {
			header = "Suggested doctors:"
		}
		return r.paint(r.theme.Highlight, header) + "\n" + r.Doctors(known.Doctors)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
