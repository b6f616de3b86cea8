package models

// Waypoint - 공유 2D 좌표계의 한 점 [x, y]
type Waypoint [2]float64

// X returns the horizontal coordinate.
func (w Waypoint) X() float64 { return w[0] }

// Y returns the vertical coordinate.
func (w Waypoint) Y() float64 { return w[1] }

// Lerp - a 와 b 사이를 t (0~1) 비율로 선형 보간
func Lerp(a, b Waypoint, t float64) Waypoint {
	return Waypoint{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}

// ========================================
// Station 상수
// ========================================
const (
	StationBusy    StationStatus = "busy"
	StationIdle    StationStatus = "idle"
	StationBlocked StationStatus = "blocked"
)

const (
	StationLoading    StationType = "loading"
	StationUnloading  StationType = "unloading"
	StationProcessing StationType = "processing"
	StationStorage    StationType = "storage"
)

// StationStatus - busy | idle | blocked
type StationStatus string

// StationType - loading | unloading | processing | storage
type StationType string

// Station is a fixed work cell on the shop floor. Stations are created once
// per dataset load and never change during a run.
type Station struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Position    Waypoint      `json:"position"`
	Utilization *float64      `json:"utilization,omitempty"` // 0-100 (%)
	Status      StationStatus `json:"status,omitempty"`
	Type        StationType   `json:"type,omitempty"`
}

// UtilizationOrZero returns the station utilization, treating a missing
// value as 0.
func (s Station) UtilizationOrZero() float64 {
	if s.Utilization == nil {
		return 0
	}
	return *s.Utilization
}
