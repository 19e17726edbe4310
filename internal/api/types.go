package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// LibraryItem describes a tracked media item in a transport-friendly format.
type LibraryItem struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Year             int      `json:"year,omitempty"`
	Kind             string   `json:"kind"`
	Path             string   `json:"path"`
	Monitored        bool     `json:"monitored"`
	MissingLanguages []string `json:"missingLanguages,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// HistoryEvent describes one acquisition history row.
type HistoryEvent struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"itemId"`
	Action    string `json:"action"`
	Provider  string `json:"provider,omitempty"`
	Language  string `json:"language,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ProviderState mirrors registry throttle diagnostics.
type ProviderState struct {
	Name           string `json:"name"`
	Throttled      bool   `json:"throttled"`
	ThrottledUntil string `json:"throttledUntil,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// SweepStatus summarizes the wanted-sweep loop.
type SweepStatus struct {
	Running   bool   `json:"running"`
	Sweeps    int64  `json:"sweeps"`
	LastSweep string `json:"lastSweep,omitempty"`
	Pending   int    `json:"pending"`
}

// ActiveRun is a live acquisition progress snapshot.
type ActiveRun struct {
	ID     string `json:"id"`
	Header string `json:"header"`
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Count  int    `json:"count"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	LibraryDBPath string          `json:"libraryDbPath"`
	LockFilePath  string          `json:"lockFilePath"`
	Providers     []ProviderState `json:"providers"`
	Wanted        SweepStatus     `json:"wanted"`
	ActiveRuns    []ActiveRun     `json:"activeRuns,omitempty"`
}

// WantedListResponse wraps the items that still miss subtitle languages.
type WantedListResponse struct {
	Items []LibraryItem `json:"items"`
}

// HistoryResponse wraps recent history events, newest first.
type HistoryResponse struct {
	Events []HistoryEvent `json:"events"`
}

// AcquireResponse acknowledges an enqueued acquisition request.
type AcquireResponse struct {
	ItemID int64 `json:"itemId"`
	Queued bool  `json:"queued"`
}
