package monitor

import (
	"os"
	"time"

	"github.com/snapdb/snapdb/internal/driver"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type Check struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Tables int    `json:"tables_count,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// Health checks that the database files exist and that the snapshot is
// readable.
func Health(d *driver.Driver) Report {
	report := Report{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]Check{},
	}

	for name, path := range map[string]string{
		"data_file":  d.DataPath(),
		"index_file": d.IndexPath(),
	} {
		check := Check{Status: "ok", Path: path}
		if _, err := os.Stat(path); err != nil {
			check.Status = "error"
			check.Error = err.Error()
			report.Status = StatusUnhealthy
		}
		report.Checks[name] = check
	}

	if stats, err := d.Stats(); err != nil {
		report.Checks["read_access"] = Check{Status: "error", Error: err.Error()}
		report.Status = StatusUnhealthy
	} else {
		report.Checks["read_access"] = Check{Status: "ok", Tables: len(stats.Tables)}
	}

	return report
}
