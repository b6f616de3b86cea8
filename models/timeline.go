package models

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	MarkerTask      MarkerType = "task"
	MarkerConflict  MarkerType = "conflict"
	MarkerMilestone MarkerType = "milestone"
)

// Severity - warning | critical
type Severity string

// MarkerType - task | conflict | milestone
type MarkerType string

// ConflictPoint is a predicted path conflict between AGVs at one instant.
type ConflictPoint struct {
	ID           string   `json:"id"`
	Position     Waypoint `json:"position"`
	Time         float64  `json:"time"`
	Severity     Severity `json:"severity"`
	InvolvedAGVs []int    `json:"involvedAGVs"`
	Resolution   string   `json:"resolution,omitempty"`
}

// TimelineMarker is a labelled point on the timeline. Interpolation never
// reads markers.
type TimelineMarker struct {
	Time  float64    `json:"time"`
	Label string     `json:"label"`
	Type  MarkerType `json:"type"`
}

// SimulationDataset is the immutable input of one simulation run.
type SimulationDataset struct {
	Stations  []Station        `json:"stations"`
	Routes    []AGVRoute       `json:"routes"`
	Conflicts []ConflictPoint  `json:"conflicts"`
	Markers   []TimelineMarker `json:"markers"`
}

// StationIndex builds an id -> station lookup table.
func (d *SimulationDataset) StationIndex() map[int]Station {
	index := make(map[int]Station, len(d.Stations))
	for _, st := range d.Stations {
		index[st.ID] = st
	}
	return index
}

// TotalDuration is the largest route completion time, or 0 without routes.
func (d *SimulationDataset) TotalDuration() float64 {
	total := 0.0
	for _, r := range d.Routes {
		if r.CompletionTime > total {
			total = r.CompletionTime
		}
	}
	return total
}

// TaskCount sums the tasks of every route.
func (d *SimulationDataset) TaskCount() int {
	n := 0
	for _, r := range d.Routes {
		n += len(r.Tasks)
	}
	return n
}
