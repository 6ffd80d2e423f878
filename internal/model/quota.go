package model

// QuotaLog is the persisted record of grading-service calls per UTC date.
type QuotaLog struct {
	DailyLogs map[string]*DailyQuota `json:"daily_logs"`
	LastReset *string                `json:"last_reset"`
}

// DailyQuota counts calls made on one date and the certificates they touched.
type DailyQuota struct {
	Calls       int      `json:"calls"`
	CertNumbers []string `json:"cert_numbers"`
}

// NewQuotaLog returns an empty log.
func NewQuotaLog() *QuotaLog {
	return &QuotaLog{DailyLogs: make(map[string]*DailyQuota)}
}

// GradingStatus is the report returned by the grading workflow status endpoint.
type GradingStatus struct {
	SlabStats
	CallsRemaining int      `json:"api_calls_remaining"`
	DailyLimit     int      `json:"daily_limit"`
	PendingCerts   []string `json:"pending_certs"`
	ProcessedToday []string `json:"processed_today"`
}

// GradingRun summarizes one pass of the processing loop.
type GradingRun struct {
	Processed      int      `json:"processed"`
	Failed         int      `json:"failed"`
	Remaining      int      `json:"remaining_pending"`
	CallsRemaining int      `json:"api_calls_remaining"`
	QuotaExhausted bool     `json:"quota_exhausted"`
	Completed      []string `json:"completed"`
}
