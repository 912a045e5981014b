package models

// TableStatus is the current state of a dining table.
type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"
	TableOccupied    TableStatus = "OCCUPIED"
	TableReserved    TableStatus = "RESERVED"
	TableMaintenance TableStatus = "MAINTENANCE"
)

// Valid reports whether s is a known table status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableMaintenance:
		return true
	}
	return false
}

// Table represents a dining table in the restaurant.
type Table struct {
	ID          int64       `json:"id"`
	TableNumber int         `json:"tableNumber"`
	Capacity    int         `json:"capacity"`
	Location    string      `json:"location,omitempty"`
	Status      TableStatus `json:"status"`
}
