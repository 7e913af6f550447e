package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JohnPierce/PersonalFinance/internal/config"
)

// Scheduler runs the nightly maintenance pass: a retroactive wash-sale scan
// over the configured lookback window followed by a 1099-B rebuild for the
// current tax year. Both underlying operations are idempotent, so an
// overlapping manual run is harmless.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	accounts *AccountService
	washSale *WashSaleService
	form     *Form1099BService
}

// NewScheduler creates a Scheduler from the application configuration.
func NewScheduler(cfg config.SchedulerConfig, accounts *AccountService, washSale *WashSaleService, form *Form1099BService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		accounts: accounts,
		washSale: washSale,
		form:     form,
	}
}

// Start registers the maintenance job and starts the cron loop. No-op when
// the scheduler is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		log.Println("Scheduler disabled, skipping nightly maintenance")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		s.RunMaintenance(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started with spec %q, lookback %d days", s.cfg.Spec, s.cfg.ScanLookbackDays)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunMaintenance executes one maintenance pass immediately. Exported so an
// operator can trigger it outside the schedule.
func (s *Scheduler) RunMaintenance(ctx context.Context) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -s.cfg.ScanLookbackDays)

	accounts, err := s.accounts.ListAccounts()
	if err != nil {
		log.Printf("Maintenance: failed to list accounts: %v", err)
		return
	}

	for _, account := range accounts {
		if !account.WashSaleTracking {
			continue
		}
		result, err := s.washSale.DetectWashSalesForPeriod(ctx, account, start, now)
		if err != nil {
			log.Printf("Maintenance: wash sale scan failed for account %s: %v", account.ID, err)
			continue
		}
		if len(result.Failures) > 0 {
			log.Printf("Maintenance: wash sale scan for account %s processed %d dispositions with %d failures",
				account.ID, result.Processed, len(result.Failures))
		}
	}

	if err := s.form.RecomputeAll(ctx, now.Year()); err != nil {
		log.Printf("Maintenance: 1099-B recompute failed: %v", err)
	}
}
