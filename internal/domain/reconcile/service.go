// Package reconcile absorbs patient data originating from the external
// booking system without creating duplicate rows, and without losing patients
// that have no booking linkage.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sentracare/patient-service/internal/domain/patient"
	"github.com/sentracare/patient-service/internal/platform/auth"
	"github.com/sentracare/patient-service/internal/platform/booking"
	"github.com/sentracare/patient-service/internal/platform/dates"
	"github.com/sentracare/patient-service/internal/platform/db"
)

// Defaults substituted for absent optional fields on reconciled patients.
// Gender is a fixed policy default, not inferred from anything.
const (
	defaultPhoneNumber = "-"
	defaultGender      = "Laki-laki"
	defaultAddress     = "-"
)

type Service struct {
	patients patient.PatientRepository
	booking  booking.Client
	tx       db.TxRunner
	logger   zerolog.Logger
}

func NewService(patients patient.PatientRepository, bookingClient booking.Client, tx db.TxRunner, logger zerolog.Logger) *Service {
	return &Service{patients: patients, booking: bookingClient, tx: tx, logger: logger}
}

// newPatientFromBooking applies the reconciliation defaulting rules. The
// scheduled-visit date is parsed leniently; a malformed value leaves the
// field unset rather than failing the registration.
func newPatientFromBooking(b booking.Booking) *patient.Patient {
	p := &patient.Patient{
		FullName:           b.FullName,
		Email:              b.Email,
		PhoneNumber:        b.PhoneNumber,
		Status:             patient.StatusActive,
		Gender:             b.Gender,
		Age:                b.Age,
		Address:            b.Address,
		TipeLayanan:        b.TipeLayanan,
		TanggalPemeriksaan: dates.ParseVisitDateLenient(b.TanggalPemeriksaan),
		JamPemeriksaan:     b.JamPemeriksaan,
		DoctorEmail:        b.DoctorEmail,
		DoctorFullName:     b.DoctorName,
	}
	if b.BookingID != 0 {
		bookingID := b.BookingID
		p.BookingID = &bookingID
	}
	if p.PhoneNumber == "" {
		p.PhoneNumber = defaultPhoneNumber
	}
	if p.Gender == "" {
		p.Gender = defaultGender
	}
	if p.Address == "" {
		p.Address = defaultAddress
	}
	return p
}

// RegisterFromBooking is the push entry point: one booking payload delivered
// directly. Repeated delivery of the same booking_id is a no-op returning the
// existing patient id. A lost insert race on the booking_id unique index is
// treated the same way.
func (s *Service) RegisterFromBooking(ctx context.Context, b booking.Booking) (int64, error) {
	if b.FullName == "" {
		return 0, fmt.Errorf("full_name is required")
	}
	if b.Email == "" {
		return 0, fmt.Errorf("email is required")
	}

	if b.BookingID != 0 {
		existing, err := s.patients.GetByBookingID(ctx, b.BookingID)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, patient.ErrPatientNotFound) {
			return 0, err
		}
	}

	p := newPatientFromBooking(b)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.patients.Create(ctx, p)
	})
	if err != nil {
		if db.IsUniqueViolation(err) && b.BookingID != 0 {
			if existing, readErr := s.patients.GetByBookingID(ctx, b.BookingID); readErr == nil {
				s.logger.Info().Int64("booking_id", b.BookingID).
					Msg("lost insert race, booking already registered")
				return existing.ID, nil
			}
		}
		return 0, err
	}

	s.logger.Info().Int64("patient_id", p.ID).Int64("booking_id", b.BookingID).
		Msg("patient registered from booking")
	return p.ID, nil
}

// SyncFromBooking is the pull entry point: fetch the confirmed-booking batch
// (forwarding the caller's token) and register every booking not yet present.
// Non-admin callers only see bookings assigned to their own display name.
// All writes happen in one transaction after the fetch completes; the whole
// batch commits or none of it does. Returns the number of patients created.
func (s *Service) SyncFromBooking(ctx context.Context, bearerToken string, claims *auth.Claims) (int, error) {
	bookings, err := s.booking.ConfirmedBookings(ctx, bearerToken)
	if err != nil {
		return 0, err
	}

	role, _ := auth.ParseRole(claims.Role)
	if role != auth.RoleSuperAdmin {
		filtered := bookings[:0]
		for _, b := range bookings {
			if b.DoctorName == claims.Name {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}

	created := 0
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, b := range bookings {
			if b.BookingID != 0 {
				if _, err := s.patients.GetByBookingID(ctx, b.BookingID); err == nil {
					continue
				} else if !errors.Is(err, patient.ErrPatientNotFound) {
					return err
				}
			}
			if err := s.patients.Create(ctx, newPatientFromBooking(b)); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("created", created).Int("candidates", len(bookings)).
		Msg("booking sync complete")
	return created, nil
}
