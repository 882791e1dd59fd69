package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mrdoc/internal/api"
	"mrdoc/internal/booking"
	"mrdoc/pkg/medtypes"
)

func (app *App) addDoctorCommands(rootCmd *cobra.Command) {
	doctorsCmd := &cobra.Command{
		Use:     "doctors",
		Aliases: []string{"doctor"},
		Short:   "Browse and register doctors",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all doctors with their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			doctors, err := app.client.ListDoctors(commandContext(cmd))
			if err != nil {
				writeLines(out, app.renderer.Banner(booking.LoadDoctorsError(api.ErrorDetail(err))))
				return ErrReported
			}
			writeLines(out, app.renderer.Doctors(doctors))
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			doctor, err := app.client.GetDoctor(commandContext(cmd), id)
			if err != nil {
				return app.fail(out, "loading doctor", err)
			}
			writeLines(out, app.renderer.Doctor(*doctor))
			return nil
		},
	}

	var form medtypes.NewDoctor
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			form.Name = strings.TrimSpace(form.Name)
			form.Specialty = strings.TrimSpace(form.Specialty)
			form.Email = strings.TrimSpace(form.Email)
			if err := booking.ValidateDoctor(form); err != nil {
				return app.fail(out, "adding doctor", err)
			}

			doctor, err := app.client.AddDoctor(commandContext(cmd), form)
			if err != nil {
				return app.fail(out, "adding doctor", err)
			}
			app.success(out, booking.DoctorAddedText)
			writeLines(out, app.renderer.Doctor(*doctor))
			return nil
		},
	}
	addCmd.Flags().StringVar(&form.Name, "name", "", "Doctor's full name")
	addCmd.Flags().StringVar(&form.Specialty, "specialty", "", "Medical specialty")
	addCmd.Flags().StringVar(&form.Email, "email", "", "Contact email")
	addCmd.Flags().IntVar(&form.SlotsPerDay, "slots", 8, "Appointment slots per day (1-20)")

	availabilityCmd := &cobra.Command{
		Use:   "availability",
		Short: "Show which doctors still have open slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			doctors, err := app.client.ListDoctors(commandContext(cmd))
			if err != nil {
				writeLines(out, app.renderer.Banner(booking.LoadDoctorsError(api.ErrorDetail(err))))
				return ErrReported
			}
			writeLines(out, app.renderer.Availability(doctors))
			return nil
		},
	}

	doctorsCmd.AddCommand(listCmd, showCmd, addCmd)
	rootCmd.AddCommand(doctorsCmd, availabilityCmd)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: expected a positive number", arg)
	}
	return id, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
