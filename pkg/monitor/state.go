package monitor

// State returns a snapshot of connection status and counters.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Connected:         m.connected,
		ConnectionID:      m.connectionID,
		LastHeartbeat:     m.lastHeartbeat,
		MedicineCount:     m.medicineCount,
		ActiveConnections: m.activeConnections,
		ReconnectAttempts: m.reconnectAttempts,
	}
}

// History returns the retained events, newest first.
func (m *Monitor) History() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.history))
	copy(out, m.history)
	return out
}

// EventsByType filters the retained history by event type, newest first.
func (m *Monitor) EventsByType(t EventType) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.history {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Recent returns the n most recent events.
func (m *Monitor) Recent(n int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.history) {
		n = len(m.history)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Event, n)
	copy(out, m.history[:n])
	return out
}

func (m *Monitor) StockAlerts() []AlertMedicine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AlertMedicine, len(m.stockAlerts))
	copy(out, m.stockAlerts)
	return out
}

func (m *Monitor) ExpiryAlerts() []AlertMedicine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AlertMedicine, len(m.expiryAlerts))
	copy(out, m.expiryAlerts)
	return out
}

func (m *Monitor) HasStockAlerts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stockAlerts) > 0
}

func (m *Monitor) HasExpiryAlerts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expiryAlerts) > 0
}

// CriticalStockAlerts filters to the critical urgency tier. The server does
// not assign urgency today, so this is empty until it does.
func (m *Monitor) CriticalStockAlerts() []AlertMedicine {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AlertMedicine
	for _, a := range m.stockAlerts {
		if a.Urgency == UrgencyCritical {
			out = append(out, a)
		}
	}
	return out
}

// ClearStockAlerts is a pure local reset; it does not touch the stream.
func (m *Monitor) ClearStockAlerts() {
	m.mu.Lock()
	m.stockAlerts = []AlertMedicine{}
	m.mu.Unlock()
}

func (m *Monitor) ClearExpiryAlerts() {
	m.mu.Lock()
	m.expiryAlerts = []AlertMedicine{}
	m.mu.Unlock()
}

func (m *Monitor) ClearHistory() {
	m.mu.Lock()
	m.history = nil
	m.mu.Unlock()
}
