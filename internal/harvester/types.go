package harvester

// Document is a parsed JSON document tree as returned by a Fetcher.
type Document = map[string]any

// Stats tracks running crawl statistics. Counters are cumulative across
// resumed runs; StartTime is set on the first run and kept on resume.
type Stats struct {
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time,omitempty"`
	MembersHarvested int     `json:"members_harvested"`
	PagesProcessed   int     `json:"pages_processed"`
	Errors           int     `json:"errors"`
	TotalDuration    float64 `json:"total_duration"`
}

// State is the durable snapshot of crawl progress persisted by a StateStore.
// ProcessedPages and PendingPages are disjoint; PendingPages preserves
// discovery order so a resumed run drains the frontier deterministically.
type State struct {
	RunID            string   `json:"run_id,omitempty"`
	ProcessedPages   []string `json:"processed_pages"`
	ProcessedMembers []string `json:"processed_members"`
	PendingPages     []string `json:"pending_pages"`
	Stats            Stats    `json:"stats"`
	LastUpdated      string   `json:"last_updated"`
}
