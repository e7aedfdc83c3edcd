// Package monitor consumes a tenant's live event stream: it keeps one
// streaming connection open, folds inbound events into local state (alerts,
// counters, bounded history), and reconnects with exponential backoff when
// the transport drops.
package monitor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const historyLimit = 50

// Callbacks are optional hooks fired outside the state lock. Medicine CRUD
// events are only recorded in history; consumers that need to react register
// here.
type Callbacks struct {
	OnMedicineCreated func(Event)
	OnMedicineUpdated func(Event)
	OnMedicineDeleted func(Event)
	OnStockAlert      func([]AlertMedicine)
	OnExpiryAlert     func([]AlertMedicine)
}

type Options struct {
	BaseURL   string // e.g. http://localhost:8080
	Subdomain string // tenant routing key

	HTTPClient           *http.Client  // defaults to http.DefaultClient
	MaxReconnectAttempts int           // default 5
	BaseReconnectDelay   time.Duration // default 1s, doubles per attempt
	MaxReconnectDelay    time.Duration // default 30s
	Callbacks            Callbacks
}

func (o *Options) applyDefaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = 5
	}
	if o.BaseReconnectDelay <= 0 {
		o.BaseReconnectDelay = time.Second
	}
	if o.MaxReconnectDelay <= 0 {
		o.MaxReconnectDelay = 30 * time.Second
	}
}

// State is a point-in-time snapshot of the monitor's derived state.
type State struct {
	Connected         bool
	ConnectionID      string
	LastHeartbeat     time.Time
	MedicineCount     int
	ActiveConnections int
	ReconnectAttempts int
}

type Monitor struct {
	opts Options

	mu                sync.Mutex
	connected         bool
	connectionID      string
	lastHeartbeat     time.Time
	history           []Event // newest first, capped at historyLimit
	stockAlerts       []AlertMedicine
	expiryAlerts      []AlertMedicine
	medicineCount     int
	activeConnections int
	reconnectAttempts int

	gen            int // stream generation; a new Connect supersedes older streams
	cancelStream   context.CancelFunc
	reconnectTimer *time.Timer
}

func New(opts Options) *Monitor {
	opts.applyDefaults()
	return &Monitor{opts: opts}
}

// Connect opens the tenant stream, replacing any live stream and any pending
// reconnect timer for this instance. At most one stream is ever live.
func (m *Monitor) Connect() {
	m.mu.Lock()
	m.stopPendingLocked()
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel
	m.mu.Unlock()

	go m.run(ctx, gen)
}

// Disconnect closes the stream and cancels any pending reconnect. Idempotent.
func (m *Monitor) Disconnect() {
	m.mu.Lock()
	m.stopPendingLocked()
	m.gen++ // orphan any in-flight stream goroutine
	m.connected = false
	m.connectionID = ""
	m.mu.Unlock()
}

// stopPendingLocked cancels the live stream and pending reconnect timer.
// Caller holds m.mu.
func (m *Monitor) stopPendingLocked() {
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

func (m *Monitor) streamURL() string {
	return fmt.Sprintf("%s/v1/monitor/%s/stream", m.opts.BaseURL, m.opts.Subdomain)
}

func (m *Monitor) run(ctx context.Context, gen int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.streamURL(), nil)
	if err != nil {
		m.transportError(gen)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.opts.HTTPClient.Do(req)
	if err != nil {
		m.transportError(gen)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		m.transportError(gen)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			if data.Len() > 0 {
				m.handleMessage(gen, data.Bytes())
				data.Reset()
			}
			continue
		}
		if rest, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			data.Write(bytes.TrimPrefix(rest, []byte(" ")))
		}
	}

	if ctx.Err() != nil {
		return // deliberate disconnect or superseded stream
	}
	m.transportError(gen)
}

// transportError marks the stream down and schedules a bounded reconnect.
// Past the attempt ceiling it stays down until an explicit Connect.
func (m *Monitor) transportError(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return // superseded by a newer Connect/Disconnect
	}
	m.connected = false

	if m.reconnectAttempts >= m.opts.MaxReconnectAttempts {
		log.Printf("monitor: gave up reconnecting to %s after %d attempts", m.opts.Subdomain, m.reconnectAttempts)
		return
	}
	delay := m.reconnectDelay(m.reconnectAttempts)
	m.reconnectAttempts++
	log.Printf("monitor: stream to %s lost, reconnecting in %s (attempt %d)", m.opts.Subdomain, delay, m.reconnectAttempts)
	m.reconnectTimer = time.AfterFunc(delay, m.Connect)
}

// reconnectDelay doubles per attempt from the base (1s, 2s, 4s, ...) and is
// capped at MaxReconnectDelay.
func (m *Monitor) reconnectDelay(attempt int) time.Duration {
	delay := m.opts.BaseReconnectDelay << uint(attempt)
	if delay > m.opts.MaxReconnectDelay || delay <= 0 {
		delay = m.opts.MaxReconnectDelay
	}
	return delay
}

func (m *Monitor) handleMessage(gen int, raw []byte) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Printf("monitor: dropping malformed event: %v", err)
		return
	}

	var (
		stockCb  func([]AlertMedicine)
		expiryCb func([]AlertMedicine)
		eventCb  func(Event)
	)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.history = append([]Event{ev}, m.history...)
	if len(m.history) > historyLimit {
		m.history = m.history[:historyLimit]
	}

	switch ev.Type {
	case EventConnectionEstablished:
		var data connectionEstablishedData
		if err := json.Unmarshal(ev.Data, &data); err == nil {
			m.connectionID = data.ConnectionID
		}
		m.connected = true
		m.reconnectAttempts = 0
	case EventHeartbeat:
		var data heartbeatData
		if err := json.Unmarshal(ev.Data, &data); err == nil {
			if !data.Timestamp.IsZero() {
				m.lastHeartbeat = data.Timestamp
			} else {
				m.lastHeartbeat = ev.Timestamp
			}
			if data.ActiveConnections != nil {
				m.activeConnections = *data.ActiveConnections
			}
			if data.MedicineCount != nil {
				m.medicineCount = *data.MedicineCount
			}
		}
	case EventStockAlert:
		m.stockAlerts = decodeAlerts(ev.Data)
		stockCb = m.opts.Callbacks.OnStockAlert
	case EventExpiryAlert:
		m.expiryAlerts = decodeAlerts(ev.Data)
		expiryCb = m.opts.Callbacks.OnExpiryAlert
	case EventMedicineCreated:
		eventCb = m.opts.Callbacks.OnMedicineCreated
	case EventMedicineUpdated:
		eventCb = m.opts.Callbacks.OnMedicineUpdated
	case EventMedicineDeleted:
		eventCb = m.opts.Callbacks.OnMedicineDeleted
	}
	stockAlerts := m.stockAlerts
	expiryAlerts := m.expiryAlerts
	m.mu.Unlock()

	if stockCb != nil {
		stockCb(stockAlerts)
	}
	if expiryCb != nil {
		expiryCb(expiryAlerts)
	}
	if eventCb != nil {
		eventCb(ev)
	}
}

// decodeAlerts replaces, never merges: the returned slice is the event's
// full medicine list, empty when the payload omits it.
func decodeAlerts(raw json.RawMessage) []AlertMedicine {
	var data alertData
	if err := json.Unmarshal(raw, &data); err != nil || data.Medicines == nil {
		return []AlertMedicine{}
	}
	return data.Medicines
}
