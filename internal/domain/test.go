package domain

// SQLCase is one named statement block of a SQL test file
type SQLCase struct {
	Name       string // Case name from the "-- test:" marker
	FilePath   string // Path to the SQL file containing this case
	Statement  string // SQL executed for the case
	SkipReason string // Non-empty when the case carries a "-- skip:" marker
}

// ServerInfo is the parent server node created in the application for the run
type ServerInfo struct {
	ServerID      int64  `json:"server_id"`
	ServerGroupID int    `json:"server_group"`
	Name          string `json:"name"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Username      string `json:"username"`
	MaintenanceDB string `json:"db"`
}
