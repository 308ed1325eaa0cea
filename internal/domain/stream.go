package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names (должны совпадать с ETL-пайплайном)
const (
	StreamHotspotLoaded = "stream:hotspot:loaded"
)

// HotspotLoadedEvent - ETL сообщает о загрузке новой партии hotspot
type HotspotLoadedEvent struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	DateFrom  string    `json:"date_from,omitempty"`
	DateTo    string    `json:"date_to,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
	Dimension string    `json:"dimension,omitempty"`
}

// AffectsDimension reports whether cached responses of the dimension must be
// dropped. An event without a dimension invalidates everything.
func (e *HotspotLoadedEvent) AffectsDimension(d Dimension) bool {
	return e.Dimension == "" || Dimension(e.Dimension) == d
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
