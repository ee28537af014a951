package domain

import "time"

// Flight and Class are owned by admin tooling; the engine only reads them.
type Flight struct {
	ID              int64     `json:"id"`
	FlightNumber    string    `json:"flight_number"`
	OriginCode      string    `json:"origin_code"`
	DestinationCode string    `json:"destination_code"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	BasePriceCents  int64     `json:"base_price_cents"`
}

type Class struct {
	ID         int64  `json:"id"`
	FlightID   int64  `json:"flight_id"`
	ClassType  string `json:"class_type"`
	FareCents  int64  `json:"fare_cents"`
	TotalSeats int    `json:"total_seats"`
}

// Availability is derived from ticket rows on every read.
type Availability struct {
	FlightID   int64    `json:"flight_id"`
	ClassID    int64    `json:"class_id"`
	TotalSeats int      `json:"total_seats"`
	Booked     int      `json:"booked"`
	Available  int      `json:"available"`
	TakenSeats []string `json:"taken_seats"`
}
