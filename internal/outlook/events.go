package outlook

import "strings"

type EventType string

const (
	EventTrip    EventType = "trip"
	EventParade  EventType = "parade"
	EventHike    EventType = "hike"
	EventFishing EventType = "fishing"
	EventWedding EventType = "wedding"
	EventPicnic  EventType = "picnic"
	EventOther   EventType = "other"
)

// ParseEventType accepts English or Spanish labels, case-insensitively.
// Anything unrecognised is EventOther.
func ParseEventType(label string) EventType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "trip", "travel", "viaje":
		return EventTrip
	case "parade", "desfile":
		return EventParade
	case "hike", "hiking", "caminata":
		return EventHike
	case "fishing", "pesca":
		return EventFishing
	case "wedding", "boda":
		return EventWedding
	case "picnic":
		return EventPicnic
	default:
		return EventOther
	}
}

// Weights scales each day sub-score for an event.
type Weights struct {
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	Wind          float64 `json:"wind"`
	Humidity      float64 `json:"humidity"`
}

// DefaultWeights apply to any event without its own table.
var DefaultWeights = Weights{Temperature: 1.1, Precipitation: 1.5, Wind: 0.9, Humidity: 0.8}

func WeightsFor(e EventType) Weights {
	switch e {
	case EventTrip:
		return Weights{Temperature: 1.0, Precipitation: 1.5, Wind: 0.8, Humidity: 0.7}
	case EventParade:
		return Weights{Temperature: 1.2, Precipitation: 1.8, Wind: 1.0, Humidity: 0.6}
	case EventHike:
		return Weights{Temperature: 1.3, Precipitation: 1.4, Wind: 1.0, Humidity: 0.8}
	case EventFishing:
		return Weights{Temperature: 0.8, Precipitation: 1.7, Wind: 1.2, Humidity: 0.6}
	case EventWedding:
		return Weights{Temperature: 1.5, Precipitation: 2.0, Wind: 0.7, Humidity: 0.7}
	case EventPicnic:
		return Weights{Temperature: 1.2, Precipitation: 1.6, Wind: 0.8, Humidity: 1.0}
	default:
		return DefaultWeights
	}
}
