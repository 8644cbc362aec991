package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Attribution delivery retry sweep, every five minutes
	CronScheduleRetryDeliveries string `env:"CRON_SCHEDULE_RETRY_DELIVERIES" envDefault:"0 */5 * * * *"`
}
