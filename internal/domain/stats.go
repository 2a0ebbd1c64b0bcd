package domain

// StatsSummary is the dashboard aggregate over a trailing window.
// UptimePercentage is 0 (not 100) when the window holds no rows.
type StatsSummary struct {
	TotalMonitors         int     `json:"totalMonitors"`
	ActiveMonitors        int     `json:"activeMonitors"`
	HealthyCount          int     `json:"healthyCount"`
	WarningCount          int     `json:"warningCount"`
	ErrorCount            int     `json:"errorCount"`
	AverageResponseTimeMS float64 `json:"averageResponseTime"`
	UptimePercentage      float64 `json:"uptimePercentage"`
}
