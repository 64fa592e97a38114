package kitbridge

import "time"

// Message types reported back to the host.
const (
	MessageTypeEvent         = "e"
	MessageTypeCommerceEvent = "cm"
)

// ReportingMessage confirms to the host that the kit handled one of its
// events. One message is returned per host event, however many
// destination records it produced.
type ReportingMessage struct {
	Kit         string    `json:"kit"`
	MessageType string    `json:"message_type"`
	EventName   string    `json:"event_name"`
	Timestamp   time.Time `json:"timestamp"`
}

func newReportingMessage(messageType, eventName string) ReportingMessage {
	return ReportingMessage{
		Kit:         Name,
		MessageType: messageType,
		EventName:   eventName,
		Timestamp:   time.Now().UTC(),
	}
}
