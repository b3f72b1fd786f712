package domain

import "time"

// Event is a bookable event. MaxCapacity is fixed at seed time; the number of
// tickets sold is always counted from ticket rows, never stored.
type Event struct {
	ID                string
	Title             string
	Description       string
	Date              string
	Location          string
	Price             int64
	MaxCapacity       int
	AdditionalDetails string
	CreatedAt         time.Time
}

// EventAvailability pairs an event with its derived availability.
// TicketsAvailable can be negative only if an external process oversold.
type EventAvailability struct {
	Event
	TicketsSold      int
	TicketsAvailable int
}
