package algorithms

import (
	"math"

	"huntian-backend/models"
)

// Progress - 경로 진행률 p = clamp(currentTime / completionTime, 0, 1)
//
// completionTime 이 0 이하이면 이미 도착한 것으로 보고 1 을 반환한다.
func Progress(completionTime, currentTime float64) float64 {
	if completionTime <= 0 || math.IsNaN(completionTime) {
		return 1
	}
	if math.IsNaN(currentTime) {
		return 0
	}
	p := currentTime / completionTime
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// SegmentIndex - currentTime 시점에 AGV 가 지나고 있는 구간 번호
//
// 구간마다 completionTime/segments 만큼의 시간이 배정된다 (기하학적 길이와
// 무관). 끝에 도달하면 마지막 구간 번호를 반환한다.
func SegmentIndex(routeLen int, completionTime, currentTime float64) int {
	segments := routeLen - 1
	if segments <= 0 {
		return 0
	}
	p := Progress(completionTime, currentTime)
	if p >= 1 {
		return segments - 1
	}
	idx, _ := segmentAt(p, segments)
	return idx
}

// PositionAt - 구간별 균등 시간 선형 보간으로 AGV 위치 계산
func PositionAt(route []models.Waypoint, completionTime, currentTime float64) models.Waypoint {
	switch len(route) {
	case 0:
		return models.Waypoint{}
	case 1:
		return route[0]
	}

	p := Progress(completionTime, currentTime)
	if p <= 0 {
		return route[0]
	}
	if p >= 1 {
		return route[len(route)-1]
	}

	idx, localT := segmentAt(p, len(route)-1)
	return models.Lerp(route[idx], route[idx+1], localT)
}

// segmentAt splits p (0 < p < 1) into a segment index and the fraction
// travelled within it.
func segmentAt(p float64, segments int) (int, float64) {
	raw := p * float64(segments)
	idx := int(math.Floor(raw))
	if idx >= segments {
		// p*segments can round up to segments for p just below 1
		return segments - 1, 1
	}
	return idx, raw - float64(idx)
}
