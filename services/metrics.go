package services

import (
	"fmt"
	"math"

	"huntian-backend/models"
)

// 효율 가중치. 데모용으로 조정된 값이며 시설 규모가 바뀌면 재검토 필요.
const (
	BottleneckPenaltyWeight = 0.3
	ConflictPenaltyWeight   = 0.05
	secondsPerHour          = 3600.0
)

// ComputeMetrics - 경로/Station/충돌과 현재 시각으로 성능 지표 계산
//
// 어떤 입력에도 실패하지 않는다. 완전히 빈 데이터셋은 효율까지 전부 0 이다.
func ComputeMetrics(routes []models.AGVRoute, stations []models.Station, conflicts []models.ConflictPoint, currentTime float64) models.PerformanceMetrics {
	var m models.PerformanceMetrics
	if len(routes) == 0 && len(stations) == 0 && len(conflicts) == 0 {
		m.EfficiencyRating = EfficiencyRating(0)
		return m
	}

	totalTasks := 0
	for _, r := range routes {
		if r.CompletionTime > m.TotalCompletionTime {
			m.TotalCompletionTime = r.CompletionTime
		}
		totalTasks += len(r.Tasks)
	}

	for _, st := range stations {
		if u := st.UtilizationOrZero(); u > m.BottleneckUtilization {
			m.BottleneckUtilization = u
		}
	}

	if m.TotalCompletionTime > 0 {
		m.Throughput = float64(totalTasks) / m.TotalCompletionTime * secondsPerHour
		m.AvgAGVUtilization = currentTime / m.TotalCompletionTime * 100
	}

	m.ConflictCount = len(conflicts)
	m.OverallEfficiency = clamp(
		(100-m.BottleneckUtilization*BottleneckPenaltyWeight)*(1-float64(m.ConflictCount)*ConflictPenaltyWeight),
		0, 100,
	)
	m.EfficiencyRating = EfficiencyRating(m.OverallEfficiency)
	return m
}

// EfficiencyRating - 전체 효율(%) → 등급
func EfficiencyRating(efficiency float64) string {
	switch {
	case efficiency >= 90:
		return models.RatingExcellent
	case efficiency >= 80:
		return models.RatingGood
	case efficiency >= 70:
		return models.RatingFair
	case efficiency >= 60:
		return models.RatingNeedsOptimization
	default:
		return models.RatingNeedsImprovement
	}
}

// FormatDuration - 초 → "42s" 또는 "3m 5s"
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%dm %ds", mins, secs)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
