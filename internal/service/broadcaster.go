package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToForm(formID string, msgType string, payload interface{})
	DisconnectForm(formID string)
}

// Event types sent to form owners
const (
	EventResponseSubmitted = "response_submitted"
	EventReportReady       = "report_ready"
	EventFormClosed        = "form_closed"
)
