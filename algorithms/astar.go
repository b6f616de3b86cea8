package algorithms

import (
	"container/heap"
	"fmt"
	"math"

	"huntian-backend/models"
)

// Cell - 그리드 좌표
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid - 시설 바닥의 점유 그리드 (8방향 이동)
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	blocked  map[Cell]bool
}

// NewGrid - Grid 생성. cellSize 가 0 이하이면 1 로 본다.
func NewGrid(width, height int, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", models.ErrInvalidGrid, width, height)
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		blocked:  make(map[Cell]bool),
	}, nil
}

// AddObstacle marks a cell as not traversable. Out-of-range cells are ignored.
func (g *Grid) AddObstacle(x, y int) {
	if g.inBounds(x, y) {
		g.blocked[Cell{X: x, Y: y}] = true
	}
}

// IsObstacle - 장애물 여부
func (g *Grid) IsObstacle(x, y int) bool {
	return g.blocked[Cell{X: x, Y: y}]
}

// IsValid - 범위 내이고 장애물이 아닌 셀
func (g *Grid) IsValid(x, y int) bool {
	return g.inBounds(x, y) && !g.IsObstacle(x, y)
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// CellOf - 월드 좌표 → 그리드 좌표
func (g *Grid) CellOf(p models.Waypoint) Cell {
	return Cell{
		X: int(math.Round(p.X() / g.CellSize)),
		Y: int(math.Round(p.Y() / g.CellSize)),
	}
}

// WorldOf - 그리드 좌표 → 월드 좌표
func (g *Grid) WorldOf(c Cell) models.Waypoint {
	return models.Waypoint{float64(c.X) * g.CellSize, float64(c.Y) * g.CellSize}
}

// node - A* 노드
type node struct {
	cell   Cell
	g, f   float64
	parent *node
	index  int // heap index
}

// openSet - f 값 기준 최소 힙
type openSet []*node

func (pq openSet) Len() int           { return len(pq) }
func (pq openSet) Less(i, j int) bool { return pq[i].f < pq[j].f }
func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

var directions = [8]Cell{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0}, // 상하좌우
	{1, 1}, {1, -1}, {-1, -1}, {-1, 1}, // 대각선
}

func heuristic(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// FindPath - A* 로 start → goal 셀 경로 탐색
//
// 경로가 없거나 시작/목표가 막혀 있으면 models.ErrNoPath 를 반환한다.
func (g *Grid) FindPath(start, goal Cell) ([]Cell, error) {
	if !g.IsValid(start.X, start.Y) || !g.IsValid(goal.X, goal.Y) {
		return nil, fmt.Errorf("%w: endpoint (%d,%d)->(%d,%d) blocked or out of range",
			models.ErrNoPath, start.X, start.Y, goal.X, goal.Y)
	}
	if start == goal {
		return []Cell{start}, nil
	}

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &node{cell: start, g: 0, f: heuristic(start, goal)})

	gScores := map[Cell]float64{start: 0}
	closed := make(map[Cell]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.cell == goal {
			return reconstructPath(current), nil
		}
		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true

		for _, d := range directions {
			next := Cell{X: current.cell.X + d.X, Y: current.cell.Y + d.Y}
			if !g.IsValid(next.X, next.Y) || closed[next] {
				continue
			}
			// 대각선 이동 시 모서리 끼임 방지
			if d.X != 0 && d.Y != 0 &&
				(!g.IsValid(current.cell.X+d.X, current.cell.Y) || !g.IsValid(current.cell.X, current.cell.Y+d.Y)) {
				continue
			}

			moveCost := 1.0
			if d.X != 0 && d.Y != 0 {
				moveCost = math.Sqrt2
			}
			tentativeG := current.g + moveCost
			if existing, ok := gScores[next]; ok && tentativeG >= existing {
				continue
			}
			gScores[next] = tentativeG
			heap.Push(open, &node{
				cell:   next,
				g:      tentativeG,
				f:      tentativeG + heuristic(next, goal),
				parent: current,
			})
		}
	}

	return nil, fmt.Errorf("%w: (%d,%d)->(%d,%d)", models.ErrNoPath, start.X, start.Y, goal.X, goal.Y)
}

func reconstructPath(n *node) []Cell {
	var path []Cell
	for ; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SimplifyPath - 같은 방향으로 이어지는 중간 셀 제거 (꺾이는 지점만 남김)
func SimplifyPath(path []Cell) []Cell {
	if len(path) < 3 {
		return path
	}
	out := []Cell{path[0]}
	for i := 1; i < len(path)-1; i++ {
		prev, cur, next := path[i-1], path[i], path[i+1]
		if cur.X-prev.X != next.X-cur.X || cur.Y-prev.Y != next.Y-cur.Y {
			out = append(out, cur)
		}
	}
	return append(out, path[len(path)-1])
}
