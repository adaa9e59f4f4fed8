package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"devboma/internal/analytics"
	"devboma/internal/repositories"
)

// JobScheduler runs the periodic maintenance work: dashboard refreshes and
// low-stock scans across active tenants.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	analyticsSvc *analytics.AnalyticsService
	tenantRepo   *repositories.TenantRepository
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(analyticsSvc *analytics.AnalyticsService,
	tenantRepo *repositories.TenantRepository) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		analyticsSvc: analyticsSvc,
		tenantRepo:   tenantRepo,
		jobs:         make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	dashboardJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.refreshDashboards, context.Background()),
		gocron.WithName("dashboard-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create dashboard refresh job: %v", err)
	} else {
		js.jobs["dashboard-refresh"] = dashboardJob
	}

	lowStockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.scanLowStock, context.Background()),
		gocron.WithName("low-stock-scan"),
	)
	if err != nil {
		log.Printf("Failed to create low-stock scan job: %v", err)
	} else {
		js.jobs["low-stock-scan"] = lowStockJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// refreshDashboards recomputes the cached dashboard for every active tenant.
func (js *JobScheduler) refreshDashboards(ctx context.Context) error {
	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list tenants for dashboard refresh: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup
	for _, tenant := range tenants {
		if tenant.Status != "active" {
			continue
		}
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.analyticsSvc.Refresh(ctx, tenantID, analytics.DefaultPeriodDays); err != nil {
				log.Printf("Failed to refresh dashboard for tenant %s: %v", tenantID.String(), err)
			}
		}(tenant.ID)
	}
	wg.Wait()
	return nil
}

// scanLowStock logs tenants whose catalogs have products at or below the
// reorder threshold.
func (js *JobScheduler) scanLowStock(ctx context.Context) error {
	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to list tenants for low-stock scan: %v", err)
		return err
	}

	for _, tenant := range tenants {
		if tenant.Status != "active" {
			continue
		}

		dashboard, err := js.analyticsSvc.Dashboard(ctx, tenant.ID, analytics.DefaultPeriodDays)
		if err != nil {
			log.Printf("Failed to compute low stock for tenant %s: %v", tenant.ID.String(), err)
			continue
		}
		if dashboard.LowStockCount > 0 {
			log.Printf("ALERT: tenant %s has %d products low on stock", tenant.Name, dashboard.LowStockCount)
		}
	}
	return nil
}

// Status reports the registered jobs for the admin surface.
func (js *JobScheduler) Status() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
