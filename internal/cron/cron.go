package cron

import (
	"context"
	"os"
	"sync"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	cron_config "github.com/customeros/payrelay/internal/cron/config"
	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

const (
	// GroupAttribution is the group for attribution delivery jobs
	GroupAttribution = "attribution"

	// maxDeliveryAttempts bounds how often a failed delivery is re-sent
	maxDeliveryAttempts = 5
	// retryBatchSize bounds one sweep
	retryBatchSize = 50
)

// DeliveryRetrier is the slice of the tracker the cron needs.
type DeliveryRetrier interface {
	RedeliverFailed(ctx context.Context, maxAttempts int, limit int) (int, error)
}

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupAttribution: new(sync.Mutex),
	},
}

type CronManager struct {
	log     logger.Logger
	cron    *cronv3.Cron
	stopCh  chan struct{}
	jobIDs  map[string]cronv3.EntryID
	retrier DeliveryRetrier
}

func NewCronManager(log logger.Logger, retrier DeliveryRetrier) *CronManager {
	return &CronManager{
		log:     log,
		stopCh:  make(chan struct{}),
		jobIDs:  make(map[string]cronv3.EntryID),
		retrier: retrier,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log.Error)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	// Register retry sweep, only when a delivery log exists to sweep
	if cronConfig.CronScheduleRetryDeliveries != "" && cm.retrier != nil {
		id, err := c.AddFunc(cronConfig.CronScheduleRetryDeliveries, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log.Error)
			jobLocks.locks[GroupAttribution].Lock()
			defer jobLocks.locks[GroupAttribution].Unlock()
			cm.retryFailedDeliveries()
		})
		if err != nil {
			cm.log.Fatalf("Could not add delivery retry cron job: %v", err)
		}
		cm.jobIDs["retry_deliveries"] = id
		cm.log.Infof("Registered delivery retry job with schedule: %s", cronConfig.CronScheduleRetryDeliveries)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) retryFailedDeliveries() {
	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.retryFailedDeliveries")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	redelivered, err := cm.retrier.RedeliverFailed(ctx, maxDeliveryAttempts, retryBatchSize)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to retry attribution deliveries: %v", err)
		return
	}

	if redelivered > 0 {
		cm.log.Infof("Redelivered %d attribution events", redelivered)
	}
}
