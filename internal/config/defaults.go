package config

const (
	// DefaultProjectPath is the default working root of the regression suite
	DefaultProjectPath = "."
	// DefaultConfigFile is the test configuration file, relative to the project path
	DefaultConfigFile = "test_config.json"
	// DefaultLogFile is the regression log written next to the executable
	DefaultLogFile = "regression.log"
	// DefaultResultFile is the JSON report written to the temp directory
	DefaultResultFile = "test_result.json"
	// DefaultStorageDir is emptied before each run
	DefaultStorageDir = "storage_tmp"
	// DefaultSQLitePath is the embedded configuration database of the application
	DefaultSQLitePath = "test_pgadmin4.db"
	// DefaultCoverageDir receives the application's coverage counters
	DefaultCoverageDir = "coverage"
	// DefaultSQLTestPath holds the pure SQL test files
	DefaultSQLTestPath = "sql"
	// DefaultBrowser is used when neither the flag nor the config names one
	DefaultBrowser = "chrome"
	// DefaultRootPackage is the root of the test module registry
	DefaultRootPackage = "pgadmin"
	// DefaultAppURL is where the application under test listens
	DefaultAppURL = "http://127.0.0.1:5050"
	// DefaultPEMDatabase is the database of the PEM subsystem
	DefaultPEMDatabase = "pem"

	// SecondaryPackage is the package of the PEM subsystem below the root package
	SecondaryPackage = "pem"
	// BrowserTestsPackage is excluded when the application runs in desktop mode
	BrowserTestsPackage = "browser.tests"
	// AllPackages selects every package below the root
	AllPackages = "all"

	// ScratchDBPrefix prefixes the scratch database created for UI runs
	ScratchDBPrefix = "acceptance_test_db"
	// ScratchDBMin and ScratchDBMax bound the random scratch database suffix
	ScratchDBMin = 10000
	ScratchDBMax = 65535

	// TestingModeEnv marks the application as running under the harness
	TestingModeEnv = "PGADMIN_TESTING_MODE"
	// SetupEmailEnv and SetupPasswordEnv carry the initial login credentials
	SetupEmailEnv    = "PGADMIN_SETUP_EMAIL"
	SetupPasswordEnv = "PGADMIN_SETUP_PASSWORD"
)

// GUIPackages are the packages that drive a browser session
var GUIPackages = []string{
	"feature_tests",
	"tests.gui",
}

// DefaultSkippedModules are the test modules the PEM subsystem does not support
var DefaultSkippedModules = []string{
	"pgadmin.browser.server_groups.servers.databases.schemas.types",
	"pgadmin.browser.server_groups.servers.resource_groups",
	"pgadmin.tools.import_export",
	"pgadmin.utils.tests.test_versioned_template_loader",
}

// DefaultPathsToIgnore are the directories skipped when scanning for SQL tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage_tmp",
	"__pycache__",
}
