package api

import (
	"context"
	"fmt"
	"net/http"

	"mrdoc/pkg/medtypes"
)

// ListDoctors returns every doctor in the directory.
func (c *Client) ListDoctors(ctx context.Context) ([]medtypes.Doctor, error) {
	var doctors []medtypes.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors/", nil, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// GetDoctor fetches a single doctor by id.
func (c *Client) GetDoctor(ctx context.Context, id int) (*medtypes.Doctor, error) {
	var doctor medtypes.Doctor
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/doctors/%d", id), nil, nil, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// AddDoctor registers a doctor and returns the stored record.
func (c *Client) AddDoctor(ctx context.Context, doctor medtypes.NewDoctor) (*medtypes.Doctor, error) {
	var created medtypes.Doctor
	if err := c.do(ctx, http.MethodPost, "/doctors/", nil, doctor, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// BookAppointment books an appointment with the given doctor.
func (c *Client) BookAppointment(ctx context.Context, doctorID int, booking medtypes.BookingRequest) (*medtypes.Appointment, error) {
	var appointment medtypes.Appointment
	path := fmt.Sprintf("/doctors/%d/appointments/", doctorID)
	if err := c.do(ctx, http.MethodPost, path, nil, booking, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}
