package domain

// StatsOverview holds per-owner totals across the main resources.
type StatsOverview struct {
	Campaigns int `json:"campaigns"`
	Contacts  int `json:"contacts"`
	Templates int `json:"templates"`
	Events    int `json:"events"`
}
