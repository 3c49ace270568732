package domain

import (
	"fmt"
	"time"
)

// MetricData is a count and amount sum for one bucket.
type MetricData struct {
	Count  int64
	Amount float64
}

func (m *MetricData) add(count int64, amount float64) {
	m.Count += count
	m.Amount += amount
}

// StatusAggregate is one row of a per-status aggregate query.
type StatusAggregate struct {
	Status LoanApplicationStatus
	Count  int64
	Amount float64
}

// PortfolioMetrics summarizes reviewed applications within a period.
type PortfolioMetrics struct {
	Period    string
	Total     MetricData
	Submitted MetricData
	Approved  MetricData
	Rejected  MetricData
}

// BuildPortfolioMetrics folds per-status aggregates into buckets. Pending
// applications are drafts and are left out, so Total is exactly the union of
// the Submitted, Approved and Rejected buckets.
func BuildPortfolioMetrics(start, end time.Time, rows []StatusAggregate) PortfolioMetrics {
	metrics := PortfolioMetrics{
		Period: fmt.Sprintf("%s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
	}
	for _, row := range rows {
		var bucket *MetricData
		switch row.Status {
		case StatusSubmitted:
			bucket = &metrics.Submitted
		case StatusApproved:
			bucket = &metrics.Approved
		case StatusRejected:
			bucket = &metrics.Rejected
		default:
			continue
		}
		bucket.add(row.Count, row.Amount)
		metrics.Total.add(row.Count, row.Amount)
	}
	return metrics
}
