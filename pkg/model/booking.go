package model

import (
	"time"
)

// DateLayout is the calendar date format stored on every booking.
const DateLayout = "2006-01-02"

type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	GuestEmail string    `json:"guest_email" bson:"guest_email"`
	GuestName  string    `json:"guest_name" bson:"guest_name"`
	HostEmail  string    `json:"host_email" bson:"host_email"`
	HostName   string    `json:"host_name" bson:"host_name"`
	Date       string    `json:"date" bson:"date"`
	Slot       string    `json:"slot" bson:"slot"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the caller input for booking an appointment. Names are not
// accepted from the caller; they are resolved from the user directory.
type BookingRequest struct {
	GuestEmail string `json:"guest_email" validate:"notblank"`
	HostEmail  string `json:"host_email" validate:"notblank"`
	Date       string `json:"date" validate:"notblank,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"notblank"`
	Note       string `json:"note,omitempty"`
}

// BookingUpdate replaces the mutable fields of a booking. Participant emails
// are immutable; empty names keep the stored value.
type BookingUpdate struct {
	GuestName string `json:"guest_name,omitempty"`
	HostName  string `json:"host_name,omitempty"`
	Date      string `json:"date" validate:"notblank,datetime=2006-01-02"`
	Slot      string `json:"slot" validate:"notblank"`
	Note      string `json:"note"`
}

type Partition string

const (
	PartitionByRole Partition = "role"
	PartitionByTime Partition = "time"
)

// PartitionedBookings is the result of listing every booking a user takes part in.
// Hosted/Guest are filled for PartitionByRole, Past/Upcoming for PartitionByTime.
type PartitionedBookings struct {
	Partition Partition  `json:"partition"`
	Hosted    []*Booking `json:"hosted,omitempty"`
	Guest     []*Booking `json:"guest,omitempty"`
	Past      []*Booking `json:"past,omitempty"`
	Upcoming  []*Booking `json:"upcoming,omitempty"`
}

type DailySlots struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	AvailableSlots []string `json:"available_slots"`
	Today          string   `json:"today"`
	Tomorrow       string   `json:"tomorrow"`
	TodaySlots     []string `json:"today_slots"`
	TomorrowSlots  []string `json:"tomorrow_slots"`
}
