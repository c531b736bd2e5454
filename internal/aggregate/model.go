// Package aggregate is the batch transformation core of the pipeline:
// it enriches raw shopper events and derives per-session and per-product
// daily metrics. Every function here is a pure transform over its input
// snapshot; callers own all I/O.
package aggregate

import (
	"time"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Enriched is a raw event plus the derived analytics columns.
type Enriched struct {
	event.Raw

	// EventTime is the parsed UTC instant of Raw.Timestamp.
	EventTime  time.Time `json:"event_time" db:"event_time"`
	Date       time.Time `json:"date" db:"date"`
	Hour       int       `json:"hour" db:"hour"`
	IsPurchase bool      `json:"is_purchase" db:"is_purchase"`
	IsAdDriven bool      `json:"is_ad_driven" db:"is_ad_driven"`
}

// SessionMetric aggregates events over one (user_id, session_id, date).
type SessionMetric struct {
	UserID               string    `json:"user_id" db:"user_id"`
	SessionID            string    `json:"session_id" db:"session_id"`
	Date                 time.Time `json:"date" db:"date"`
	TotalEvents          int64     `json:"total_events" db:"total_events"`
	Purchases            int64     `json:"purchases" db:"purchases"`
	SessionRevenue       float64   `json:"session_revenue" db:"session_revenue"`
	UniqueProductsViewed int64     `json:"unique_products_viewed" db:"unique_products_viewed"`
	DeviceType           string    `json:"device_type" db:"device_type"`
}

// ProductMetric aggregates events over one (product_id, category, date).
type ProductMetric struct {
	ProductID      string    `json:"product_id" db:"product_id"`
	Category       string    `json:"category" db:"category"`
	Date           time.Time `json:"date" db:"date"`
	TotalViews     int64     `json:"total_views" db:"total_views"`
	TotalPurchases int64     `json:"total_purchases" db:"total_purchases"`
	TotalRevenue   float64   `json:"total_revenue" db:"total_revenue"`
	AvgPrice       float64   `json:"avg_price" db:"avg_price"`
	ConversionRate float64   `json:"conversion_rate" db:"conversion_rate"`
}

// ValidationResult summarizes batch-level quality counters.
type ValidationResult struct {
	TotalRecords    int64 `json:"total_records"`
	NullUserIDCount int64 `json:"null_user_id_count"`
}
