package model

// DashboardStats is a point-in-time snapshot of role-specific counters over
// the latest-per-contract set.
type DashboardStats struct {
	Role     Role             `json:"role"`
	Counters map[string]int64 `json:"counters"`
}
