package api

import (
	"context"
	"fmt"
	"net/http"

	"mrdoc/pkg/medtypes"
)

// ListAppointments returns every appointment, cancelled ones included.
func (c *Client) ListAppointments(ctx context.Context) ([]medtypes.Appointment, error) {
	var appointments []medtypes.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments/", nil, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// CancelAppointment cancels an appointment by id.
func (c *Client) CancelAppointment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), nil, nil, nil)
}
