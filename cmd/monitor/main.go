// Command monitor tails a tenant's live event stream in the terminal.
//
//	monitor -url http://localhost:8080 -subdomain acme
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/pkg/monitor"
)

// expiryLine formats one expiry alert entry. DaysUntilExpiry is optional on
// the wire.
func expiryLine(med monitor.AlertMedicine) string {
	if med.DaysUntilExpiry == nil {
		return fmt.Sprintf("EXPIRING   %-30s", med.Name)
	}
	return fmt.Sprintf("EXPIRING   %-30s %d day(s)", med.Name, *med.DaysUntilExpiry)
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	subdomain := flag.String("subdomain", "", "tenant subdomain")
	flag.Parse()

	if *subdomain == "" {
		log.Fatal("-subdomain is required")
	}

	m := monitor.New(monitor.Options{
		BaseURL:   *baseURL,
		Subdomain: *subdomain,
		Callbacks: monitor.Callbacks{
			OnStockAlert: func(medicines []monitor.AlertMedicine) {
				for _, med := range medicines {
					fmt.Printf("LOW STOCK  %-30s %d left (min %d)\n", med.Name, med.Stock, med.MinStock)
				}
			},
			OnExpiryAlert: func(medicines []monitor.AlertMedicine) {
				for _, med := range medicines {
					fmt.Println(expiryLine(med))
				}
			},
			OnMedicineCreated: func(e monitor.Event) {
				fmt.Printf("created    %s\n", e.Timestamp.Format(time.RFC3339))
			},
			OnMedicineUpdated: func(e monitor.Event) {
				fmt.Printf("updated    %s\n", e.Timestamp.Format(time.RFC3339))
			},
			OnMedicineDeleted: func(e monitor.Event) {
				fmt.Printf("deleted    %s\n", e.Timestamp.Format(time.RFC3339))
			},
		},
	})

	m.Connect()
	defer m.Disconnect()

	// Print a status line every 30 seconds so a silent stream is visibly alive.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			state := m.State()
			if state.Connected {
				fmt.Printf("status     connected=%s medicines=%d connections=%d last heartbeat %s\n",
					state.ConnectionID, state.MedicineCount, state.ActiveConnections,
					state.LastHeartbeat.Format(time.RFC3339))
			} else {
				fmt.Printf("status     disconnected (reconnect attempts: %d)\n", state.ReconnectAttempts)
			}
		case <-sig:
			fmt.Println("shutting down")
			return
		}
	}
}
