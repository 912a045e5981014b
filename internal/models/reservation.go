package models

import "time"

// ReservationStatus is the current state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationSeated    ReservationStatus = "SEATED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Reservation represents a booking for a party. TableID is zero when no
// table has been assigned yet.
type Reservation struct {
	ID              int64             `json:"id"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerEmail   string            `json:"customerEmail,omitempty"`
	ReservationDate time.Time         `json:"reservationDate"`
	PartySize       int               `json:"partySize"`
	TableID         int64             `json:"tableId,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Status          ReservationStatus `json:"status"`
}
