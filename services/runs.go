package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"huntian-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunStore - 로드된 데이터셋 이력 저장소
type RunStore struct {
	db *gorm.DB
}

// NewRunStore - RunStore 생성
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Create - 데이터셋을 새 run 으로 저장
func (s *RunStore) Create(name, source string, ds *models.SimulationDataset) (*models.SimulationRun, error) {
	if s.db == nil {
		return nil, models.ErrNoDatabase
	}
	run, err := NewRun(name, source, ds)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("run 저장 실패: %w", err)
	}
	return run, nil
}

// Get - ID 로 run 조회
func (s *RunStore) Get(id string) (*models.SimulationRun, error) {
	if s.db == nil {
		return nil, models.ErrNoDatabase
	}
	var run models.SimulationRun
	err := s.db.Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("run %s: %w", id, models.ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List - 최근 생성 순으로 run 목록 조회 (데이터셋 본문 제외)
func (s *RunStore) List(limit int) ([]models.SimulationRun, error) {
	if s.db == nil {
		return nil, models.ErrNoDatabase
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SimulationRun
	err := s.db.Omit("dataset_json").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// Dataset - run 의 데이터셋 복원
func (s *RunStore) Dataset(run *models.SimulationRun) (*models.SimulationDataset, error) {
	return DecodeDataset(run)
}

// NewRun - 데이터셋 요약과 직렬화 본문으로 run 레코드 생성 (저장하지 않음)
func NewRun(name, source string, ds *models.SimulationDataset) (*models.SimulationRun, error) {
	if ds == nil {
		ds = &models.SimulationDataset{}
	}
	body, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("데이터셋 직렬화 실패: %w", err)
	}

	id := uuid.New().String()
	if name == "" {
		name = "run-" + id[:8]
	}
	return &models.SimulationRun{
		ID:            id,
		Name:          name,
		Source:        source,
		StationCount:  len(ds.Stations),
		RouteCount:    len(ds.Routes),
		TaskCount:     ds.TaskCount(),
		ConflictCount: len(ds.Conflicts),
		TotalDuration: ds.TotalDuration(),
		DatasetJSON:   string(body),
	}, nil
}

// DecodeDataset - run 에 저장된 데이터셋 복원
func DecodeDataset(run *models.SimulationRun) (*models.SimulationDataset, error) {
	var ds models.SimulationDataset
	if run.DatasetJSON == "" {
		return &ds, nil
	}
	if err := json.Unmarshal([]byte(run.DatasetJSON), &ds); err != nil {
		return nil, fmt.Errorf("run %s 데이터셋 복원 실패: %w", run.ID, err)
	}
	return &ds, nil
}

// LoadDatasetFile - JSON 파일에서 데이터셋 로드
func LoadDatasetFile(path string) (*models.SimulationDataset, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("데이터셋 파일 읽기 실패: %w", err)
	}
	return ParseDataset(body)
}

// ParseDataset - JSON 본문을 데이터셋으로 변환
func ParseDataset(body []byte) (*models.SimulationDataset, error) {
	var ds models.SimulationDataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, fmt.Errorf("데이터셋 파싱 실패: %w", err)
	}
	return &ds, nil
}
