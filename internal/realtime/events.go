package realtime

// TypeServiceReports is the message type for report changes
const TypeServiceReports = "service_reports"

// Report change events
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ReportChange tells clients to refetch the report list
type ReportChange struct {
	Event string `json:"event"`
	ID    int64  `json:"id,omitempty"`
}

// PublishReportChange announces a report mutation
func (h *Hub) PublishReportChange(event string, id int64) {
	h.Publish(TypeServiceReports, ReportChange{Event: event, ID: id})
}
