package schema

// DatabaseBackend identifies the backend used by the run-tracking store.
type DatabaseBackend string

// Supported run store backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Weekdays lists weekday names in bucket order for the per-weekday
// message counts.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// TestTypeNames lists the checkbox markers recognized in pull bodies.
var TestTypeNames = []string{"Manual", "Unit", "Client", "Integration", "Browser"}
