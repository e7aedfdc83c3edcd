package monitor

import (
	"encoding/json"
	"time"
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

// Event mirrors the server's wire record. Data is kept raw; typed payloads
// are decoded per event type as they are folded into state.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TenantID  string          `json:"tenantId"`
}

// AlertMedicine is one entry of a stock or expiry alert. Urgency is read by
// dashboard tiers but is not populated by the server today; treat it as
// absent unless a payload carries it.
type AlertMedicine struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Stock           int        `json:"stock"`
	MinStock        int        `json:"minStock"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry,omitempty"`
	Urgency         string     `json:"urgency,omitempty"`
}

const UrgencyCritical = "critical"

type alertData struct {
	Medicines []AlertMedicine `json:"medicines"`
}

// Counter fields are pointers: a heartbeat that omits one leaves the
// previous value in place.
type heartbeatData struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveConnections *int      `json:"activeConnections"`
	MedicineCount     *int      `json:"medicineCount"`
}

type connectionEstablishedData struct {
	ConnectionID string `json:"connectionId"`
	TenantID     string `json:"tenantId"`
}
