package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"mrdoc/internal/booking"
	"mrdoc/internal/logger"
	"mrdoc/pkg/medtypes"
)

func (app *App) addAppointmentCommands(rootCmd *cobra.Command) {
	var (
		doctorID  int
		req       medtypes.BookingRequest
		listSlots bool
	)
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment with a doctor",
		Long: `Book an appointment. The date defaults to tomorrow; times are half-hour
slots from 09:00 to 17:00 (see --list-slots).`,
		Example: `  mrdoc book --doctor 1 --patient "Jane Roe" --time 10:30
  mrdoc book --list-slots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if listSlots {
				writeLines(out, app.renderer.Slots())
				return nil
			}

			now := app.gen.Now()
			req.PatientName = strings.TrimSpace(req.PatientName)
			if req.AppointmentDate == "" {
				req.AppointmentDate = booking.TomorrowDate(now)
			}
			if err := booking.ValidateBooking(doctorID, req, now); err != nil {
				return app.fail(out, "booking appointment", err)
			}

			appt, err := app.client.BookAppointment(commandContext(cmd), doctorID, req)
			if err != nil {
				return app.fail(out, "booking appointment", err)
			}
			logger.Debug("Appointment booked", "id", appt.ID, "doctor_id", doctorID)
			app.success(out, booking.BookedText)
			writeLines(out, app.renderer.Appointment(*appt))
			return nil
		},
	}
	bookCmd.Flags().IntVar(&doctorID, "doctor", 0, "Doctor id (see `mrdoc doctors list`)")
	bookCmd.Flags().StringVar(&req.PatientName, "patient", "", "Patient name")
	bookCmd.Flags().StringVar(&req.AppointmentDate, "date", "", "Appointment date YYYY-MM-DD [default: tomorrow]")
	bookCmd.Flags().StringVar(&req.TimeSlot, "time", "", "Time slot HH:MM")
	bookCmd.Flags().BoolVar(&listSlots, "list-slots", false, "Print the bookable time slots and exit")

	appointmentsCmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List or cancel appointments",
	}

	var filterFlag string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := booking.ParseFilter(filterFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			appts, err := app.client.ListAppointments(commandContext(cmd))
			if err != nil {
				return app.fail(out, "loading appointments", err)
			}
			writeLines(out, app.renderer.Appointments(appts, filter))
			return nil
		},
	}
	listCmd.Flags().StringVar(&filterFlag, "filter", string(booking.FilterAll), "Which appointments to show (all|active|cancelled)")

	cancelCmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an appointment and free its slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := app.client.CancelAppointment(commandContext(cmd), id); err != nil {
				return app.fail(out, "cancelling appointment", err)
			}
			logger.Debug("Appointment cancelled", "id", id)
			app.success(out, booking.CancelledText)
			return nil
		},
	}

	appointmentsCmd.AddCommand(listCmd, cancelCmd)
	rootCmd.AddCommand(bookCmd, appointmentsCmd)
}
