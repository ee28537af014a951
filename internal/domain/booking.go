package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "Booked"
	TicketStatusCancelled TicketStatus = "Cancelled"
	TicketStatusCompleted TicketStatus = "Completed"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type PaymentMode string

const (
	PaymentModeCreditCard PaymentMode = "Credit Card"
	PaymentModeDebitCard  PaymentMode = "Debit Card"
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeNetBanking PaymentMode = "Net Banking"
	PaymentModeCash       PaymentMode = "Cash"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCreditCard, PaymentModeDebitCard, PaymentModeUPI, PaymentModeNetBanking, PaymentModeCash:
		return true
	}
	return false
}

type Booking struct {
	ID               int64         `json:"id"`
	UserID           int64         `json:"user_id"`
	PNR              string        `json:"pnr"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	Status           BookingStatus `json:"status"`
	BookingDate      time.Time     `json:"booking_date"`
	Payment          *Payment      `json:"payment,omitempty"`
	Passengers       []Passenger   `json:"passengers"`
}

type Passenger struct {
	ID        int64   `json:"id"`
	BookingID int64   `json:"booking_id"`
	Name      string  `json:"name"`
	Age       int     `json:"age"`
	Gender    Gender  `json:"gender"`
	Ticket    *Ticket `json:"ticket,omitempty"`
}

type Ticket struct {
	ID          int64        `json:"id"`
	PassengerID int64        `json:"passenger_id"`
	FlightID    int64        `json:"flight_id"`
	ClassID     int64        `json:"class_id"`
	SeatNo      string       `json:"seat_no"`
	TravelDate  time.Time    `json:"travel_date"`
	Status      TicketStatus `json:"status"`
	Flight      *Flight      `json:"flight,omitempty"`
	Class       *Class       `json:"class,omitempty"`
}

type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	TransactionID string        `json:"transaction_id"`
	ExternalRef   string        `json:"external_ref"`
	PaymentMode   PaymentMode   `json:"payment_mode"`
	AmountCents   int64         `json:"amount_cents"`
	Status        PaymentStatus `json:"status"`
	PaymentDate   time.Time     `json:"payment_date"`
}

// TicketRecord is the administrative projection of a ticket with its owners.
type TicketRecord struct {
	Ticket
	PassengerName string        `json:"passenger_name"`
	BookingID     int64         `json:"booking_id"`
	PNR           string        `json:"pnr"`
	UserID        int64         `json:"user_id"`
	BookingStatus BookingStatus `json:"booking_status"`
}

type UserReport struct {
	UserID       int64          `json:"user_id"`
	TotalTickets int            `json:"total_tickets"`
	Tickets      []TicketRecord `json:"tickets"`
}
