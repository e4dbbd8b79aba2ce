// Package booking is the client for the external booking service, the
// producer of patient/booking payloads this service reconciles against.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrUnavailable marks any failure to reach the booking service or a
// non-success upstream response. The whole sync aborts on it.
var ErrUnavailable = errors.New("booking service unavailable")

// Booking is a confirmed scheduling record as delivered by the booking
// service. Field names follow its wire format.
type Booking struct {
	BookingID          int64  `json:"booking_id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	PhoneNumber        string `json:"phone_number"`
	Gender             string `json:"gender"`
	Age                int    `json:"age"`
	Address            string `json:"address"`
	TipeLayanan        string `json:"tipe_layanan"`
	TanggalPemeriksaan string `json:"tanggal_pemeriksaan"`
	JamPemeriksaan     string `json:"jam_pemeriksaan"`
	DoctorEmail        string `json:"doctor_email"`
	DoctorName         string `json:"doctor_name"`
}

// Client fetches confirmed bookings on behalf of an authenticated caller.
type Client interface {
	ConfirmedBookings(ctx context.Context, bearerToken string) ([]Booking, error)
}

type httpClient struct {
	rest   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a booking-service client with a fixed request timeout.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &httpClient{rest: rest, logger: logger}
}

// ConfirmedBookings fetches the confirmed-booking batch, forwarding the
// caller's bearer token so the booking service applies its own access rules.
func (c *httpClient) ConfirmedBookings(ctx context.Context, bearerToken string) ([]Booking, error) {
	var bookings []Booking

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(bearerToken).
		SetResult(&bookings).
		Get("/bookings/confirmed")
	if err != nil {
		c.logger.Error().Err(err).Msg("booking service call failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.IsError() {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Msg("booking service returned error")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	c.logger.Info().Int("count", len(bookings)).Msg("fetched confirmed bookings")
	return bookings, nil
}
