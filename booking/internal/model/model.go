package model

import (
	"time"
)

type Table struct {
	ID       int  `json:"id" db:"id"`
	Number   int  `json:"number" db:"number"`
	Places   int  `json:"places" db:"places"`
	IsVip    bool `json:"isVip" db:"is_vip"`
	MinOrder *int `json:"minOrder,omitempty" db:"min_order"`
}

type CreateTableRequest struct {
	ID       int  `json:"id" validate:"required,gt=0"`
	Number   int  `json:"number" validate:"required,gt=0"`
	Places   int  `json:"places" validate:"required,gt=0"`
	IsVip    bool `json:"isVip"`
	MinOrder *int `json:"minOrder" validate:"omitempty,gte=0"`
}

type Reservation struct {
	ID            string    `json:"id" db:"id"`
	TableNumber   int       `json:"tableNumber" db:"table_number"`
	ClientName    string    `json:"clientName" db:"client_name"`
	PhoneNumber   string    `json:"phoneNumber" db:"phone_number"`
	Date          string    `json:"date" db:"date"`
	SlotTimeStart string    `json:"slotTimeStart" db:"slot_time_start"`
	SlotTimeEnd   string    `json:"slotTimeEnd" db:"slot_time_end"`
	CreatedAt     time.Time `json:"-" db:"created_at"`
}

// Slot returns the reservation's interval. Stored records are validated on
// the way in, so a parse failure here means the record was written
// out-of-band.
func (r Reservation) Slot() (Slot, error) {
	return ParseSlot(r.SlotTimeStart, r.SlotTimeEnd)
}

type CreateReservationRequest struct {
	TableNumber   int    `json:"tableNumber" validate:"required,gt=0"`
	ClientName    string `json:"clientName" validate:"required,notblank"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,notblank"`
	Date          string `json:"date" validate:"required,date"`
	SlotTimeStart string `json:"slotTimeStart" validate:"required,clock"`
	SlotTimeEnd   string `json:"slotTimeEnd" validate:"required,clock,later=SlotTimeStart"`
}

type CreateReservationResponse struct {
	ReservationID string `json:"reservationId"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListTables struct {
	Tables []Table `json:"tables"`
}

type ListReservations struct {
	Paging       `json:",inline"`
	Reservations []Reservation `json:"reservations"`
}
