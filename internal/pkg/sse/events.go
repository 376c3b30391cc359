package sse

// Event names published over the stream. Clients switch on these instead of
// inspecting payload shapes.
const (
	EventTimeLogUpdated        = "timelog_updated"
	EventTimeLogGracePeriod    = "timelog_grace_period"
	EventTimeLogAutoTerminated = "timelog_auto_terminated"
	EventRegularizationUpdated = "regularization_updated"
	EventLeaveRequestUpdated   = "leave_request_updated"
	EventNotification          = "notification"
)
