package model

import "time"

// ReservationStatus is the soft-cancel state of a reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// SpaceName identifies one of the bookable spaces.
type SpaceName string

const (
	SpaceDesk1          SpaceName = "desk_1"
	SpaceDesk2          SpaceName = "desk_2"
	SpaceDesk3          SpaceName = "desk_3"
	SpaceMeetingRoomA   SpaceName = "meeting_room_a"
	SpaceMeetingRoomB   SpaceName = "meeting_room_b"
	SpaceConferenceHall SpaceName = "conference_hall"
	SpacePrivateOffice  SpaceName = "private_office"
)

// Spaces lists every bookable space in display order.
var Spaces = []SpaceName{
	SpaceDesk1,
	SpaceDesk2,
	SpaceDesk3,
	SpaceMeetingRoomA,
	SpaceMeetingRoomB,
	SpaceConferenceHall,
	SpacePrivateOffice,
}

// Valid reports whether s names a known space.
func (s SpaceName) Valid() bool {
	for _, known := range Spaces {
		if s == known {
			return true
		}
	}
	return false
}

// Reservation is a booking of one space by one user. UserID is fixed at creation.
type Reservation struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	UserID        uint              `json:"user_id" gorm:"not null;index"`
	SpaceName     SpaceName         `json:"space_name" gorm:"type:varchar(50);not null;index"`
	StartDatetime time.Time         `json:"start_datetime" gorm:"not null"`
	EndDatetime   time.Time         `json:"end_datetime" gorm:"not null"`
	Status        ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
