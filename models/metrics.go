package models

// ========================================
// 효율 등급
// ========================================
const (
	RatingExcellent         = "excellent"
	RatingGood              = "good"
	RatingFair              = "fair"
	RatingNeedsOptimization = "needs_optimization"
	RatingNeedsImprovement  = "needs_improvement"
)

// PerformanceMetrics - 매 tick 재계산되는 성능 지표 (저장하지 않음)
type PerformanceMetrics struct {
	TotalCompletionTime   float64 `json:"totalCompletionTime"`   // 총 완료 시간 (초)
	BottleneckUtilization float64 `json:"bottleneckUtilization"` // 병목 가동률 (%)
	Throughput            float64 `json:"throughput"`            // 처리량 (건/시간)
	AvgAGVUtilization     float64 `json:"avgAGVUtilization"`     // AGV 평균 가동률 (%)
	ConflictCount         int     `json:"conflictCount"`         // 충돌 수
	OverallEfficiency     float64 `json:"overallEfficiency"`     // 전체 효율 (%)
	EfficiencyRating      string  `json:"efficiencyRating"`
}
