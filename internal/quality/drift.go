package quality

import (
	"math"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Drift compares a current batch against a reference dataset and returns
// drift metrics: relative mean drift (percent) for the monetary columns
// and KL divergence for the categorical distributions. Metrics that
// cannot be computed (empty inputs, zero reference mean) are omitted.
func Drift(current, reference []event.Raw) map[string]float64 {
	metrics := make(map[string]float64)
	if len(current) == 0 || len(reference) == 0 {
		return metrics
	}

	for _, column := range []string{"price", "revenue"} {
		curMean := meanOf(current, column)
		refMean := meanOf(reference, column)
		if refMean == 0 {
			continue
		}
		metrics[column+"_drift_pct"] = math.Abs(curMean-refMean) / refMean * 100
	}

	for _, column := range []string{"event_type", "device_type", "category"} {
		if kl, ok := klDivergence(current, reference, column); ok {
			metrics[column+"_kl_divergence"] = kl
		}
	}

	return metrics
}

func meanOf(events []event.Raw, column string) float64 {
	var sum float64
	for i := range events {
		v, _ := numericColumn(&events[i], column)
		sum += v
	}
	return sum / float64(len(events))
}

func distribution(events []event.Raw, column string) map[string]float64 {
	counts := make(map[string]float64)
	for i := range events {
		v, ok := stringColumn(&events[i], column)
		if !ok {
			continue
		}
		counts[v]++
	}
	total := float64(len(events))
	for k := range counts {
		counts[k] /= total
	}
	return counts
}

// klDivergence computes sum(p * log(p / q)) over values present in both
// distributions, matching the simplified check the monitor has always
// used. Returns false when the distributions share no values.
func klDivergence(current, reference []event.Raw, column string) (float64, bool) {
	p := distribution(current, column)
	q := distribution(reference, column)

	var kl float64
	shared := false
	for v, pv := range p {
		qv, ok := q[v]
		if !ok || qv == 0 {
			continue
		}
		shared = true
		kl += pv * math.Log(pv/qv)
	}

	return kl, shared
}
