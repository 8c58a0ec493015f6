package dto

// CleanupResponse reports a purge run. In dry run mode Deleted carries the
// number of customers that would be removed.
type CleanupResponse struct {
	DryRun  bool  `json:"dryRun"`
	Deleted int64 `json:"deleted"`
}

type RestockResponse struct {
	Restocked int               `json:"restocked"`
	Products  []ProductResponse `json:"products,omitempty"`
}
