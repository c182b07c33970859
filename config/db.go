package config

import "time"

type DBCfg struct {
	// IsTelemetryLogsEnabled turns on the periodic stats log line.
	IsTelemetryLogsEnabled bool `yaml:"stat_logs_enabled"`

	// TelemetryLogsInterval is the period between stats log lines.
	// Example: "5s".
	TelemetryLogsInterval time.Duration `yaml:"stat_logs_interval"`
}
