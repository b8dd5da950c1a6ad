package registry

// SchedulePage is one page of schedule descriptors.
type SchedulePage struct {
	Schedules    []ScheduleEntry `json:"schedules"`
	TotalEntries int             `json:"total_entries"`
}

type ScheduleEntry struct {
	ID     string         `json:"id"`
	Paused bool           `json:"paused"`
	Spec   ScheduleSpec   `json:"spec"`
	Action ScheduleAction `json:"action"`
	Info   ScheduleInfo   `json:"info"`
}

// ScheduleSpec is the declared recurrence: fixed intervals, cron
// expressions, or both.
type ScheduleSpec struct {
	Intervals       []ScheduleInterval `json:"intervals"`
	CronExpressions []string           `json:"cron_expressions"`
}

type ScheduleInterval struct {
	EveryMinutes int `json:"every_minutes"`
}

// ScheduleAction describes what the schedule starts.
type ScheduleAction struct {
	WorkflowType string `json:"workflow_type"`
	TaskQueue    string `json:"task_queue"`
}

// ScheduleInfo carries recent and upcoming activation times as RFC3339
// strings.
type ScheduleInfo struct {
	RecentActions     []ScheduleActionResult `json:"recent_actions"`
	FutureActionTimes []string               `json:"future_action_times"`
}

type ScheduleActionResult struct {
	ScheduleTime string `json:"schedule_time"`
}

type ExecutionsResponse struct {
	Executions []ExecutionEntry `json:"executions"`
}

type ExecutionEntry struct {
	ID         string `json:"id"`
	TaskQueue  string `json:"task_queue"`
	Status     int    `json:"status"`
	StatusName string `json:"status_name"`
}
