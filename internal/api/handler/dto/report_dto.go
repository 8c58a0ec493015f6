package dto

import "time"

// ReportSummaryResponse carries the same totals the weekly report logs.
type ReportSummaryResponse struct {
	Customers   int64     `json:"customers"`
	Orders      int64     `json:"orders"`
	Revenue     string    `json:"revenue"`
	GeneratedAt time.Time `json:"generatedAt"`
}
