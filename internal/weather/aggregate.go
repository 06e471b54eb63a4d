package weather

import (
	"math"
	"sort"
	"time"
)

// DailyOutlook buckets forecast entries by UTC day and aggregates each bucket.
// Temperatures become high/low, humidity is averaged, wind is the max, precipitation is summed,
// and the condition is selected by majority (or the earliest entry if tied).
// Days are returned in ascending order.
func DailyOutlook(entries []Summary) []DaySummary {
	if len(entries) == 0 {
		return nil
	}

	buckets := make(map[string][]Summary)
	for _, e := range entries {
		ts := e.Timestamp.UTC()
		k := ts.Format("2006-01-02")
		buckets[k] = append(buckets[k], e)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]DaySummary, 0, len(keys))
	for _, k := range keys {
		date, err := time.Parse("2006-01-02", k)
		if err != nil {
			continue
		}
		days = append(days, aggregateDay(date, buckets[k]))
	}
	return days
}

func aggregateDay(date time.Time, entries []Summary) DaySummary {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	day := DaySummary{
		Date: date,
		High: math.Inf(-1),
		Low:  math.Inf(1),
	}

	var sumHumidity float64
	conditionCounts := make(map[Condition]int)
	var order []Condition

	for _, e := range entries {
		day.High = math.Max(day.High, e.Temperature)
		day.Low = math.Min(day.Low, e.Temperature)
		day.WindSpeed = math.Max(day.WindSpeed, e.WindSpeed)
		day.PrecipMM += e.PrecipMM
		sumHumidity += e.Humidity

		if _, seen := conditionCounts[e.Condition]; !seen {
			order = append(order, e.Condition)
		}
		conditionCounts[e.Condition]++
	}
	day.Humidity = sumHumidity / float64(len(entries))

	// Pick majority condition; ties go to whichever appeared first.
	day.Condition = ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			day.Condition = cond
		}
	}

	// Describe the day by the entry closest to midday.
	noon := date.Add(12 * time.Hour)
	best := entries[0]
	for _, e := range entries[1:] {
		if absDuration(e.Timestamp.Sub(noon)) < absDuration(best.Timestamp.Sub(noon)) {
			best = e
		}
	}
	day.Description = best.Description

	return day
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
