// Package telemetry provides window statistics, performance tracking and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventWeatherChange EventType = iota
	EventReveal
	EventRare
	EventBackground
	EventAudioSource
)

// String returns the CSV name of an event type.
func (t EventType) String() string {
	switch t {
	case EventWeatherChange:
		return "weather_change"
	case EventReveal:
		return "reveal"
	case EventRare:
		return "rare"
	case EventBackground:
		return "background"
	case EventAudioSource:
		return "audio_source"
	default:
		return "unknown"
	}
}

// Event is a single discrete occurrence worth logging to events.csv.
type Event struct {
	Tick      int64     `csv:"tick"`
	SimTimeMS float64   `csv:"sim_time_ms"`
	Type      EventType `csv:"-"`
	Name      string    `csv:"type"`
	Detail    string    `csv:"detail"`
}

// NewWeatherChangeEvent records a transition between two modes.
func NewWeatherChangeEvent(tick int64, simMS float64, from, to string) Event {
	return newEvent(tick, simMS, EventWeatherChange, from+"->"+to)
}

// NewRevealEvent records a lore reveal. image is empty when none was attached.
func NewRevealEvent(tick int64, simMS float64, image string) Event {
	return newEvent(tick, simMS, EventReveal, image)
}

// NewRareEvent records a rare spawn.
func NewRareEvent(tick int64, simMS float64, kind string) Event {
	return newEvent(tick, simMS, EventRare, kind)
}

// NewBackgroundEvent records a background advance.
func NewBackgroundEvent(tick int64, simMS float64, name string) Event {
	return newEvent(tick, simMS, EventBackground, name)
}

// NewAudioSourceEvent records an audio source change.
func NewAudioSourceEvent(tick int64, simMS float64, source string) Event {
	return newEvent(tick, simMS, EventAudioSource, source)
}

func newEvent(tick int64, simMS float64, typ EventType, detail string) Event {
	return Event{
		Tick:      tick,
		SimTimeMS: simMS,
		Type:      typ,
		Name:      typ.String(),
		Detail:    detail,
	}
}
