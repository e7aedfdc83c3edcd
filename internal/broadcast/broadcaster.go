package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

// ErrTenantNotFound is returned by Subscribe when the subdomain does not
// resolve to an active tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// Sink receives serialized events for one connection. Implementations must
// be safe for concurrent Send calls: the connection's scan loop and
// Publish run on different goroutines.
type Sink interface {
	Send(payload []byte) error
}

type connection struct {
	id       string
	tenantID uuid.UUID
	sink     Sink
	cancel   context.CancelFunc
}

type Config struct {
	ScanInterval     time.Duration
	ExpiryWindowDays int
}

func (c *Config) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 10 * time.Second
	}
	if c.ExpiryWindowDays <= 0 {
		c.ExpiryWindowDays = 30
	}
}

// Broadcaster owns the live-connection registry and the per-connection alert
// scan loops. One instance is created at server start and injected into the
// handlers and services that publish events.
type Broadcaster struct {
	tenantRepo   repositories.TenantRepository
	medicineRepo repositories.MedicineRepository
	cfg          Config

	mu    sync.RWMutex
	conns map[string]*connection
}

func NewBroadcaster(tenantRepo repositories.TenantRepository, medicineRepo repositories.MedicineRepository, cfg Config) *Broadcaster {
	cfg.applyDefaults()
	return &Broadcaster{
		tenantRepo:   tenantRepo,
		medicineRepo: medicineRepo,
		cfg:          cfg,
		conns:        make(map[string]*connection),
	}
}

// Subscribe resolves the tenant, registers a connection around sink, emits
// connection_established, and starts the connection's scan loop. The
// returned connection id is unique and never reused. The caller owns the
// transport; it should call Unsubscribe when the client goes away.
func (b *Broadcaster) Subscribe(ctx context.Context, subdomain string, sink Sink) (string, error) {
	tenant, err := b.tenantRepo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTenantNotFound
		}
		return "", err
	}
	if tenant.Status != models.TenantStatusActive {
		return "", ErrTenantNotFound
	}

	scanCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		id:       fmt.Sprintf("%s:%d:%s", tenant.ID, time.Now().UnixMilli(), random.String(8)),
		tenantID: tenant.ID,
		sink:     sink,
		cancel:   cancel,
	}

	b.mu.Lock()
	b.conns[conn.id] = conn
	b.mu.Unlock()

	if err := b.send(conn, EventConnectionEstablished, ConnectionEstablishedData{
		ConnectionID: conn.id,
		TenantID:     tenant.ID,
	}); err != nil {
		b.Unsubscribe(conn.id)
		return "", err
	}

	go b.scanLoop(scanCtx, conn)

	log.Printf("monitor: connection %s opened for tenant %s", conn.id, tenant.Subdomain)
	return conn.id, nil
}

// Unsubscribe cancels the connection's scan loop and removes it from the
// registry. Safe to call more than once; the connection never reopens.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	conn, ok := b.conns[id]
	if ok {
		delete(b.conns, id)
	}
	b.mu.Unlock()

	if ok {
		conn.cancel()
		log.Printf("monitor: connection %s closed", id)
	}
}

// ConnectionCount reports the number of live connections across all tenants.
func (b *Broadcaster) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// TenantConnectionCount reports the number of live connections for one tenant.
func (b *Broadcaster) TenantConnectionCount(tenantID uuid.UUID) int {
	prefix := tenantID.String() + ":"
	count := 0
	b.mu.RLock()
	for id := range b.conns {
		if strings.HasPrefix(id, prefix) {
			count++
		}
	}
	b.mu.RUnlock()
	return count
}

// Publish delivers an event to every live connection of the tenant. A write
// failure deregisters that single connection and never blocks delivery to
// the others. Returns the number of connections the event reached.
func (b *Broadcaster) Publish(tenantID uuid.UUID, eventType EventType, data interface{}) int {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
	})
	if err != nil {
		log.Printf("monitor: failed to marshal %s event for tenant %s: %v", eventType, tenantID, err)
		return 0
	}

	prefix := tenantID.String() + ":"
	b.mu.RLock()
	targets := make([]*connection, 0, len(b.conns))
	for id, conn := range b.conns {
		if strings.HasPrefix(id, prefix) {
			targets = append(targets, conn)
		}
	}
	b.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.sink.Send(payload); err != nil {
			log.Printf("monitor: write to connection %s failed, dropping it: %v", conn.id, err)
			b.Unsubscribe(conn.id)
			continue
		}
		delivered++
	}
	return delivered
}

func (b *Broadcaster) send(conn *connection, eventType EventType, data interface{}) error {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TenantID:  conn.tenantID,
	})
	if err != nil {
		return err
	}
	return conn.sink.Send(payload)
}

func (b *Broadcaster) scanLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(b.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.scanOnce(ctx, conn); err != nil {
				log.Printf("monitor: scan for connection %s failed, dropping it: %v", conn.id, err)
				b.Unsubscribe(conn.id)
				return
			}
		}
	}
}

// scanOnce runs one alert-evaluation tick for the connection's tenant.
// Event order within a tick is fixed: stock_alert (if any), expiry_alert
// (if any), heartbeat (always).
func (b *Broadcaster) scanOnce(ctx context.Context, conn *connection) error {
	low, err := b.medicineRepo.LowStock(ctx, conn.tenantID)
	if err != nil {
		return err
	}
	if len(low) > 0 {
		data := StockAlertData{Medicines: make([]AlertMedicine, 0, len(low))}
		for _, m := range low {
			data.Medicines = append(data.Medicines, AlertMedicine{
				ID:       m.ID,
				Name:     m.Name,
				Stock:    m.Stock,
				MinStock: m.MinStock,
			})
		}
		if err := b.send(conn, EventStockAlert, data); err != nil {
			return err
		}
	}

	expiring, err := b.medicineRepo.ExpiringWithin(ctx, conn.tenantID, b.cfg.ExpiryWindowDays)
	if err != nil {
		return err
	}
	if len(expiring) > 0 {
		now := time.Now()
		data := ExpiryAlertData{Medicines: make([]AlertMedicine, 0, len(expiring))}
		for _, m := range expiring {
			entry := AlertMedicine{
				ID:         m.ID,
				Name:       m.Name,
				Stock:      m.Stock,
				MinStock:   m.MinStock,
				ExpiryDate: m.ExpiryDate,
			}
			if m.ExpiryDate != nil {
				days := DaysUntilExpiry(now, *m.ExpiryDate)
				entry.DaysUntilExpiry = &days
			}
			data.Medicines = append(data.Medicines, entry)
		}
		if err := b.send(conn, EventExpiryAlert, data); err != nil {
			return err
		}
	}

	count, err := b.medicineRepo.CountActive(ctx, conn.tenantID)
	if err != nil {
		return err
	}
	return b.send(conn, EventHeartbeat, HeartbeatData{
		Timestamp:         time.Now().UTC(),
		ActiveConnections: b.ConnectionCount(),
		MedicineCount:     count,
	})
}

// DaysUntilExpiry is ceil((expiry - now) / 24h): an item expiring right now
// yields 0, one expiring in any part of tomorrow yields at least 1.
func DaysUntilExpiry(now, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
