package services

import (
	"math"

	"huntian-backend/models"
)

// 충돌 표시 시간창 (초). 데모 시설 규모에 맞춰진 값이다.
const (
	ConflictWarningWindow = 5.0 // |t - conflict.time| > 5 이면 숨김
	ConflictActiveWindow  = 1.0 // |t - conflict.time| < 1 이면 상세 표시
)

// ConflictVisibility - 충돌 시각과의 거리로 표시 단계 결정
func ConflictVisibility(conflict models.ConflictPoint, currentTime float64) models.Visibility {
	d := math.Abs(currentTime - conflict.Time)
	switch {
	case math.IsNaN(d) || d > ConflictWarningWindow:
		return models.VisibilityHidden
	case d < ConflictActiveWindow:
		return models.VisibilityActive
	default:
		return models.VisibilityWarning
	}
}
