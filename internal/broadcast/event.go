package broadcast

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMedicineCreated       EventType = "medicine_created"
	EventMedicineUpdated       EventType = "medicine_updated"
	EventMedicineDeleted       EventType = "medicine_deleted"
	EventStockAlert            EventType = "stock_alert"
	EventExpiryAlert           EventType = "expiry_alert"
	EventConnectionEstablished EventType = "connection_established"
	EventHeartbeat             EventType = "heartbeat"
)

// Event is the wire record pushed to subscribers. Data shape depends on Type.
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	TenantID  uuid.UUID   `json:"tenantId"`
}

// AlertMedicine is one entry in a stock or expiry alert. The list carried by
// an alert event is always the complete current set for the tenant, not a
// delta from the previous tick.
type AlertMedicine struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Stock           int        `json:"stock"`
	MinStock        int        `json:"minStock"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry,omitempty"`
}

type StockAlertData struct {
	Medicines []AlertMedicine `json:"medicines"`
}

type ExpiryAlertData struct {
	Medicines []AlertMedicine `json:"medicines"`
}

type HeartbeatData struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveConnections int       `json:"activeConnections"`
	MedicineCount     int       `json:"medicineCount"`
}

type ConnectionEstablishedData struct {
	ConnectionID string    `json:"connectionId"`
	TenantID     uuid.UUID `json:"tenantId"`
}
