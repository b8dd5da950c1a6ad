package monitor

const (
	MetricStatusReportSend    = "status_report_send_total"
	MetricStatusReportSendErr = "status_report_send_err_total"

	MetricMonitorCycle          = "monitor_cycle_total"
	MetricMonitorReportOutcome  = "monitor_report_outcome_total"
	MetricMonitorSyncedMonitors = "monitor_synced_total"
)
