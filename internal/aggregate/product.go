package aggregate

// productKey identifies one daily product group. A struct key keeps ids
// opaque, as in BySession.
type productKey struct {
	productID string
	category  string
	date      string
}

// ByProduct groups enriched events by (product_id, category, date) and
// computes the daily product aggregates. conversion_rate is guarded:
// zero when a group has no views, never NaN or Inf.
//
// Metrics are emitted in first-seen key order.
func ByProduct(events []Enriched) []ProductMetric {
	type acc struct {
		metric   ProductMetric
		priceSum float64
	}

	groups := make(map[productKey]*acc)
	order := make([]productKey, 0)

	for _, e := range events {
		key := productKey{
			productID: e.ProductID,
			category:  e.Category,
			date:      e.Date.Format("2006-01-02"),
		}

		a, ok := groups[key]
		if !ok {
			a = &acc{metric: ProductMetric{
				ProductID: e.ProductID,
				Category:  e.Category,
				Date:      e.Date,
			}}
			groups[key] = a
			order = append(order, key)
		}

		a.metric.TotalViews++
		if e.IsPurchase {
			a.metric.TotalPurchases++
		}
		a.metric.TotalRevenue += e.Revenue
		a.priceSum += e.Price
	}

	metrics := make([]ProductMetric, 0, len(order))
	for _, key := range order {
		a := groups[key]
		if a.metric.TotalViews > 0 {
			a.metric.AvgPrice = a.priceSum / float64(a.metric.TotalViews)
			a.metric.ConversionRate = float64(a.metric.TotalPurchases) / float64(a.metric.TotalViews)
		}
		metrics = append(metrics, a.metric)
	}

	return metrics
}
