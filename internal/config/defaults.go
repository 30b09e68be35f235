// Package config provides configuration loading and defaults for reposcan.
package config

// DefaultConfigDir is the default location for reposcan configuration.
const DefaultConfigDir = "~/.config/reposcan"

// DefaultDBName is the filename for the SQLite history database.
const DefaultDBName = "reposcan.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// LocalConfigFile is a per-project config file that takes precedence over
// the user config when present in the working directory.
const LocalConfigFile = ".reposcan.yaml"

// Environment variables that override the budgets.
const (
	EnvMaxFunctionLines = "SCAN_MAX_FN"
	EnvMaxFileLines     = "SCAN_MAX_FILE"
	EnvComplexityWarn   = "SCAN_COMPLEXITY"
)

// DefaultBudgets holds the default warning thresholds.
var DefaultBudgets = Budgets{
	MaxFunctionLines: 80,
	MaxFileLines:     600,
	ComplexityWarn:   23,
}

// DefaultFailExclude holds the path prefixes ignored by --fail checks.
var DefaultFailExclude = FailExclude{
	Functions:  []string{"tests/"},
	Complexity: []string{"tests/", "tools/", "src/lib/"},
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}

// DefaultWatch holds the default watch loop settings.
var DefaultWatch = Watch{
	Debounce:  "2s",
	CacheSize: 4096,
}
