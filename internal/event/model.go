package event

import (
	"time"
)

// Raw is a shopper event exactly as it arrives from the ingestion side.
// The JSON field names are fixed: the generator, the Kafka topic and the
// warehouse loader all speak this schema.
type Raw struct {
	EventID      string    `json:"event_id" db:"event_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	SessionID    string    `json:"session_id" db:"session_id"`
	Timestamp    string    `json:"timestamp" db:"timestamp"`
	EventType    string    `json:"event_type" db:"event_type"`
	ProductID    string    `json:"product_id" db:"product_id"`
	Category     string    `json:"category" db:"category"`
	Price        float64   `json:"price" db:"price"`
	DeviceType   string    `json:"device_type" db:"device_type"`
	Location     *Location `json:"location,omitempty" db:"-"`
	AdCampaignID *string   `json:"ad_campaign_id" db:"ad_campaign_id"`
	Revenue      float64   `json:"revenue" db:"revenue"`
}

// Location is emitted by the generator and carried through as-is.
// Aggregation ignores it.
type Location struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	IPAddress string `json:"ip_address"`
}

const (
	EventTypePageView  = "page_view"
	EventTypeAddToCart = "add_to_cart"
	EventTypePurchase  = "purchase"
	EventTypeSearch    = "search"
	EventTypeAdClick   = "ad_click"
)

const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeDesktop = "desktop"
	DeviceTypeTablet  = "tablet"
)

// Types lists every valid event type.
func Types() []string {
	return []string{
		EventTypePageView,
		EventTypeAddToCart,
		EventTypePurchase,
		EventTypeSearch,
		EventTypeAdClick,
	}
}

// DeviceTypes lists every valid device type.
func DeviceTypes() []string {
	return []string{DeviceTypeMobile, DeviceTypeDesktop, DeviceTypeTablet}
}

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t string) bool {
	switch t {
	case EventTypePageView, EventTypeAddToCart, EventTypePurchase, EventTypeSearch, EventTypeAdClick:
		return true
	}
	return false
}

// ValidDeviceType reports whether t is one of the known device types.
func ValidDeviceType(t string) bool {
	switch t {
	case DeviceTypeMobile, DeviceTypeDesktop, DeviceTypeTablet:
		return true
	}
	return false
}

// Validate checks the structural invariants of a record at the boundary.
// A missing user_id is NOT an error here: batch validation counts it as
// an advisory condition instead.
func (e *Raw) Validate() error {
	if e.EventID == "" {
		return ErrMissingEventID
	}
	if !ValidEventType(e.EventType) {
		return ErrInvalidEventType
	}
	if !ValidDeviceType(e.DeviceType) {
		return ErrInvalidDeviceType
	}
	if e.Price < 0 {
		return ErrNegativePrice
	}
	if e.Revenue < 0 {
		return ErrNegativeRevenue
	}
	return nil
}

// IsAdDriven reports whether the event is attributed to an ad campaign.
func (e *Raw) IsAdDriven() bool {
	return e.AdCampaignID != nil && *e.AdCampaignID != ""
}

// timestampLayouts covers RFC3339 with or without fractional seconds and
// the zone-less ISO-8601 form some producers emit. Zone-less values are
// interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses an event timestamp into a UTC instant.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &MalformedTimestampError{Value: s}
}
