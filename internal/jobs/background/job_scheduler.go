package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/ops"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler manages recurring background jobs
type JobScheduler struct {
	scheduler    gocron.Scheduler
	medicineRepo repositories.MedicineRepository
	tenantRepo   repositories.TenantRepository
	reportSvc    services.ReportService
	cacheSvc     caching.CacheService
	checker      *ops.ConsistencyChecker
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(medicineRepo repositories.MedicineRepository, tenantRepo repositories.TenantRepository,
	reportSvc services.ReportService, cacheSvc caching.CacheService, checker *ops.ConsistencyChecker) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		medicineRepo: medicineRepo,
		tenantRepo:   tenantRepo,
		reportSvc:    reportSvc,
		cacheSvc:     cacheSvc,
		checker:      checker,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Expired medicine sweep - every 24 hours
	expiredJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.sweepExpiredMedicines),
		gocron.WithName("expired-medicine-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expired medicine sweep job: %v", err)
	} else {
		js.addJob("expired-sweep", expiredJob)
	}

	// Sales report warmup - every 15 minutes
	reportJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshSalesReports),
		gocron.WithName("sales-report-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create sales report job: %v", err)
	} else {
		js.addJob("report-refresh", reportJob)
	}

	// Cross-tenant consistency audit - every hour
	auditJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.runConsistencyAudit),
		gocron.WithName("consistency-audit"),
	)
	if err != nil {
		log.Printf("Failed to create consistency audit job: %v", err)
	} else {
		js.addJob("consistency-audit", auditJob)
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) addJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

// sweepExpiredMedicines flags medicines whose expiry date has passed
func (js *JobScheduler) sweepExpiredMedicines() error {
	ctx := context.Background()

	marked, err := js.medicineRepo.MarkExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Failed to mark expired medicines: %v", err)
		return err
	}
	if marked > 0 {
		log.Printf("Marked %d medicines as expired", marked)
	}
	return nil
}

// refreshSalesReports warms the daily sales summary cache for active tenants
func (js *JobScheduler) refreshSalesReports() error {
	ctx := context.Background()

	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to get tenants for report refresh: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.reportSvc.DailySales(ctx, tenantID, time.Now()); err != nil {
				log.Printf("Failed to refresh sales report for tenant %s: %v", tenantID.String(), err)
			}
		}(tenant.ID)
	}

	wg.Wait()
	return nil
}

// runConsistencyAudit logs cross-tenant integrity problems
func (js *JobScheduler) runConsistencyAudit() error {
	ctx := context.Background()

	report, err := js.checker.Run(ctx)
	if err != nil {
		log.Printf("Consistency audit failed: %v", err)
		return err
	}

	if len(report.OrphanedUsers) > 0 {
		log.Printf("ALERT: %d users belong to missing or deleted tenants", len(report.OrphanedUsers))
	}
	if len(report.TenantsNoAdmin) > 0 {
		log.Printf("ALERT: %d active tenants have no admin user", len(report.TenantsNoAdmin))
	}
	return nil
}
