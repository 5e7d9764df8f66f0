package reputation

import (
	"math"
	"time"
)

type Distribution struct {
	Rating1 int `json:"rating1"`
	Rating2 int `json:"rating2"`
	Rating3 int `json:"rating3"`
	Rating4 int `json:"rating4"`
	Rating5 int `json:"rating5"`
}

func (d Distribution) Total() int {
	return d.Rating1 + d.Rating2 + d.Rating3 + d.Rating4 + d.Rating5
}

func (d Distribution) Count(star int) int {
	switch star {
	case 1:
		return d.Rating1
	case 2:
		return d.Rating2
	case 3:
		return d.Rating3
	case 4:
		return d.Rating4
	case 5:
		return d.Rating5
	}
	return 0
}

func (d *Distribution) add(star, n int) {
	switch star {
	case 1:
		d.Rating1 += n
	case 2:
		d.Rating2 += n
	case 3:
		d.Rating3 += n
	case 4:
		d.Rating4 += n
	case 5:
		d.Rating5 += n
	}
}

// Percentage is count/total*100, or 0 for an empty distribution.
func (d Distribution) Percentage(star int) float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return float64(d.Count(star)) / float64(total) * 100
}

type Percentages struct {
	Rating1 float64 `json:"rating1"`
	Rating2 float64 `json:"rating2"`
	Rating3 float64 `json:"rating3"`
	Rating4 float64 `json:"rating4"`
	Rating5 float64 `json:"rating5"`
}

func (d Distribution) Percentages() Percentages {
	return Percentages{
		Rating1: d.Percentage(1),
		Rating2: d.Percentage(2),
		Rating3: d.Percentage(3),
		Rating4: d.Percentage(4),
		Rating5: d.Percentage(5),
	}
}

// Stats summarises the ACTIVE feedback of one company.
type Stats struct {
	CompanyID      string
	AverageRating  float64
	TotalFeedbacks int
	Distribution   Distribution
}

// Aggregate returns nil when there is nothing to aggregate. Ratings outside
// 1..5 are ignored.
func Aggregate(companyID string, ratings []int) *Stats {
	counts := make(map[int]int, 5)
	for _, r := range ratings {
		counts[r]++
	}
	return StatsFromCounts(companyID, counts)
}

// StatsFromCounts builds stats from per-star counts, as returned by a GROUP BY.
func StatsFromCounts(companyID string, counts map[int]int) *Stats {
	var (
		dist  Distribution
		total int
		sum   int
	)
	for star := 1; star <= 5; star++ {
		n := counts[star]
		if n <= 0 {
			continue
		}
		dist.add(star, n)
		total += n
		sum += star * n
	}
	if total == 0 {
		return nil
	}

	return &Stats{
		CompanyID:      companyID,
		AverageRating:  round2(float64(sum) / float64(total)),
		TotalFeedbacks: total,
		Distribution:   dist,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Metrics struct {
	ID             string       `json:"id"`
	CompanyID      string       `json:"companyId"`
	AverageRating  float64      `json:"averageRating"`
	TotalFeedbacks int          `json:"totalFeedbacks"`
	Distribution   Distribution `json:"distribution"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func NewMetrics(stats *Stats) *Metrics {
	m := &Metrics{CompanyID: stats.CompanyID}
	m.Apply(stats)
	return m
}

// Apply overwrites the aggregate columns with fresh statistics.
func (m *Metrics) Apply(stats *Stats) {
	m.AverageRating = stats.AverageRating
	m.TotalFeedbacks = stats.TotalFeedbacks
	m.Distribution = stats.Distribution
}

// Matches reports whether applying stats would leave the row unchanged.
func (m *Metrics) Matches(stats *Stats) bool {
	return math.Round(m.AverageRating*100) == math.Round(stats.AverageRating*100) &&
		m.TotalFeedbacks == stats.TotalFeedbacks &&
		m.Distribution == stats.Distribution
}

type HistoryEntry struct {
	ID             string       `json:"id"`
	MetricsID      string       `json:"-"`
	AverageRating  float64      `json:"averageRating"`
	TotalFeedbacks int          `json:"totalFeedbacks"`
	Distribution   Distribution `json:"distribution"`
	RecordedAt     time.Time    `json:"recordedAt"`
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendThreshold is 0.10 expressed in hundredths of a star.
const trendThreshold = 10

// TrendBetween compares the current average with the latest snapshot. Averages
// are stored with two decimals, so the delta is compared on that grid and a
// move of exactly 0.10 stays stable.
func TrendBetween(current float64, previous *HistoryEntry) Trend {
	if previous == nil {
		return TrendStable
	}
	delta := int(math.Round((current - previous.AverageRating) * 100))
	switch {
	case delta > trendThreshold:
		return TrendUp
	case delta < -trendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}
