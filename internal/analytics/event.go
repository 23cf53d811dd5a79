package analytics

// Engagement event types emitted by the playback engine.
const (
	EventDemoView     = "demo_view"
	EventScreenView   = "screen_view"
	EventHotspotClick = "hotspot_click"
	EventStepNext     = "step_next"
	EventStepBack     = "step_back"
	EventDemoComplete = "demo_complete"
)

// Event is the fire-and-forget record handed to the analytics
// collaborator. ViewerID is a locally persisted pseudo-random id,
// stable per device; SessionID is regenerated per page load.
type Event struct {
	DemoID    uint64  `json:"demo_id"`
	PublicID  string  `json:"public_id"`
	ViewerID  string  `json:"viewer_id"`
	SessionID string  `json:"session_id"`
	EventType string  `json:"event_type" binding:"required"`
	ScreenID  *uint64 `json:"screen_id,omitempty"`
	HotspotID *uint64 `json:"hotspot_id,omitempty"`
	StepIndex *int    `json:"step_index,omitempty"`
	Referrer  string  `json:"referrer,omitempty"`
	UserAgent string  `json:"user_agent,omitempty"`
}
