package aggregate

// sessionKey identifies one session group. A struct key keeps ids
// opaque: no delimiter an id could contain.
type sessionKey struct {
	userID    string
	sessionID string
	date      string
}

// BySession groups enriched events by (user_id, session_id, date) and
// computes the session-level aggregates. device_type is "first wins":
// the device of the first event encountered for the group in input
// order, so a fixed input order yields a stable result.
//
// Metrics are emitted in first-seen key order.
func BySession(events []Enriched) []SessionMetric {
	groups := make(map[sessionKey]*SessionMetric)
	products := make(map[sessionKey]map[string]struct{})
	order := make([]sessionKey, 0)

	for _, e := range events {
		key := sessionKey{
			userID:    e.UserID,
			sessionID: e.SessionID,
			date:      e.Date.Format("2006-01-02"),
		}

		m, ok := groups[key]
		if !ok {
			m = &SessionMetric{
				UserID:     e.UserID,
				SessionID:  e.SessionID,
				Date:       e.Date,
				DeviceType: e.DeviceType,
			}
			groups[key] = m
			products[key] = make(map[string]struct{})
			order = append(order, key)
		}

		m.TotalEvents++
		if e.IsPurchase {
			m.Purchases++
		}
		m.SessionRevenue += e.Revenue
		products[key][e.ProductID] = struct{}{}
	}

	metrics := make([]SessionMetric, 0, len(order))
	for _, key := range order {
		m := groups[key]
		m.UniqueProductsViewed = int64(len(products[key]))
		metrics = append(metrics, *m)
	}

	return metrics
}
