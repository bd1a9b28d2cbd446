package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService schedules the daily billing ticks
type CronService struct {
	cron      *cron.Cron
	scheduler *SchedulerService
}

// NewCronService creates a new cron service
func NewCronService(scheduler *SchedulerService) *CronService {
	return &CronService{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		scheduler: scheduler,
	}
}

// Start registers the daily billing job and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("5 0 * * *", s.runDaily); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("✅ Cron scheduler started [daily billing tick at 00:05 UTC]")
	return nil
}

// runDaily issues recurring invoices first, then sweeps for overdue ones.
// Invoices created today can only go overdue after the grace period, so the
// order never freezes a membership billed moments earlier.
func (s *CronService) runDaily() {
	ctx := context.Background()

	if _, err := s.scheduler.TickRecurring(ctx); err != nil {
		log.Printf("❌ Recurring tick error: %v", err)
	}
	if _, err := s.scheduler.TickOverdue(ctx); err != nil {
		log.Printf("❌ Overdue tick error: %v", err)
	}
}

// Stop stops the scheduler and waits for any running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}
