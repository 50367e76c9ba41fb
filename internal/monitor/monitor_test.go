package monitor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gotest.tools/assert"

	"github.com/snapdb/snapdb/internal/driver"
	"github.com/snapdb/snapdb/internal/monitor"
	"github.com/snapdb/snapdb/pkg"
)

func TestCollectorCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	intercept := monitor.NewCollector(reg).Interceptor()

	assert.NilError(t, intercept(driver.OpInsert, "users", func() error { return nil }))
	assert.ErrorContains(t,
		intercept(driver.OpInsert, "users", func() error { return os.ErrPermission }),
		"permission")

	families, err := reg.Gather()
	assert.NilError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != "snapdb_operations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, total, 2.0)
}

func TestLoggingPassesResultThrough(t *testing.T) {
	intercept := monitor.Logging(pkg.Logger())

	assert.NilError(t, intercept(driver.OpSelect, "users", func() error { return nil }))
	err := intercept(driver.OpSelect, "users", func() error { return os.ErrClosed })
	assert.Assert(t, err == os.ErrClosed)
}

func TestHealth(t *testing.T) {
	db, err := driver.New(filepath.Join(t.TempDir(), "app"))
	assert.NilError(t, err)

	report := monitor.Health(db)
	assert.Equal(t, report.Status, monitor.StatusHealthy)
	assert.Equal(t, report.Checks["data_file"].Status, "ok")
	assert.Equal(t, report.Checks["index_file"].Status, "ok")
	assert.Equal(t, report.Checks["read_access"].Status, "ok")

	assert.NilError(t, os.Remove(db.IndexPath()))
	report = monitor.Health(db)
	assert.Equal(t, report.Status, monitor.StatusUnhealthy)
	assert.Equal(t, report.Checks["index_file"].Status, "error")
}
