package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a render job in a transport-friendly format.
type Job struct {
	ID                int64       `json:"id"`
	UUID              string      `json:"uuid"`
	Title             string      `json:"title"`
	Status            string      `json:"status"`
	PublicStatus      string      `json:"publicStatus"`
	Lane              string      `json:"lane"`
	Progress          JobProgress `json:"progress"`
	ErrorMessage      string      `json:"errorMessage"`
	Voice             string      `json:"voice,omitempty"`
	Language          string      `json:"language,omitempty"`
	NarrationMS       int64       `json:"narrationMs,omitempty"`
	ApproximateTiming bool        `json:"approximateTiming,omitempty"`
	TransformApplied  bool        `json:"transformApplied,omitempty"`
	BackgroundClip    string      `json:"backgroundClip,omitempty"`
	FinalFile         string      `json:"finalFile,omitempty"`
	JobLogPath        string      `json:"jobLogPath,omitempty"`
	NeedsReview       bool        `json:"needsReview"`
	ReviewReason      string      `json:"reviewReason,omitempty"`
	CreatedAt         string      `json:"createdAt,omitempty"`
	UpdatedAt         string      `json:"updatedAt,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// QueueHealth summarizes queue counts by lifecycle bucket.
type QueueHealth struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool          `json:"running"`
	Queue       QueueHealth   `json:"queue"`
	LastError   string        `json:"lastError,omitempty"`
	LastJob     *Job          `json:"lastJob,omitempty"`
	StageHealth []StageHealth `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queueDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// GenerateRequest submits narration text for video generation.
type GenerateRequest struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// GenerateResponse acknowledges an accepted generation job.
type GenerateResponse struct {
	Job Job `json:"job"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// HealthResponse reports daemon and queue readiness.
type HealthResponse struct {
	Status      string        `json:"status"`
	Queue       QueueHealth   `json:"queue"`
	StageHealth []StageHealth `json:"stageHealth,omitempty"`
}

// StatusLine is a labelled severity row rendered by the CLI status view.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DependencySummary aggregates external dependency readiness.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// LogEvent is the transport form of one structured log record.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp string            `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Component string            `json:"component,omitempty"`
	Stage     string            `json:"stage,omitempty"`
	JobID     int64             `json:"jobId,omitempty"`
	Lane      string            `json:"lane,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   []DetailField     `json:"details,omitempty"`
}

// DetailField mirrors the console handler's info bullet lines.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogStreamResponse returns a page of log events and the next cursor.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
