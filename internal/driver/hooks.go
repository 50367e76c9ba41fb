package driver

// Op names a driver operation as seen by interceptors and sinks.
type Op string

const (
	OpCreateTable Op = "create_table"
	OpInsert      Op = "insert"
	OpSelect      Op = "select"
	OpUpdate      Op = "update"
	OpDelete      Op = "delete"
	OpBackup      Op = "backup"
	OpRestore     Op = "restore"
	OpAggregate   Op = "aggregate"
)

type OpFunc func() error

// Interceptor wraps every driver operation. The chain is composed once at
// construction; the first interceptor passed to WithInterceptors is the
// outermost.
type Interceptor func(op Op, table string, next OpFunc) error

func (d *Driver) run(op Op, table string, fn OpFunc) error {
	for i := len(d.chain) - 1; i >= 0; i-- {
		intercept, next := d.chain[i], fn
		fn = func() error { return intercept(op, table, next) }
	}
	return fn()
}
