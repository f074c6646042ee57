package store

import (
	"encoding/json"
	"time"

	"github.com/BaSui01/synthdoc/repair"
)

// Run 一次修复循环的终态
type Run struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Process      string    `gorm:"size:128;not null;index" json:"process"`
	Status       string    `gorm:"size:32;not null;index" json:"status"`
	Artifact     string    `gorm:"type:text" json:"artifact"`
	Message      string    `gorm:"type:text" json:"message,omitempty"`
	Attempts     int       `gorm:"not null;default:0" json:"attempts"`
	ErrorCode    string    `gorm:"size:64" json:"error_code,omitempty"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	Seed         string    `gorm:"type:text" json:"seed,omitempty"`
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	FinishedAt   time.Time `gorm:"not null" json:"finished_at"`
	CreatedAt    time.Time `json:"created_at"`

	History []Attempt `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// TableName 表名
func (Run) TableName() string { return "synthdoc_runs" }

// Attempt 单次生成-校验尝试
type Attempt struct {
	ID          uint     `gorm:"primaryKey" json:"-"`
	RunID       string   `gorm:"size:36;not null;index" json:"run_id"`
	Idx         int      `gorm:"not null" json:"index"`
	Temperature *float64 `json:"temperature,omitempty"`
	Artifact    string   `gorm:"type:text" json:"artifact"`
	Valid       bool     `gorm:"not null;default:false" json:"valid"`
	Message     string   `gorm:"type:text" json:"message,omitempty"`
	DurationMS  int64    `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
}

// TableName 表名
func (Attempt) TableName() string { return "synthdoc_attempts" }

// Duration returns the attempt duration.
func (a Attempt) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// runFromRecord 将循环终态转换为行
func runFromRecord(rec repair.Record) (*Run, error) {
	run := &Run{
		ID:         rec.RunID,
		Process:    rec.Process,
		Status:     rec.Status,
		Artifact:   rec.Artifact,
		Message:    rec.Message,
		Attempts:   rec.Attempts,
		ErrorCode:  string(rec.ErrorCode),
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	if rec.Err != nil {
		run.ErrorMessage = rec.Err.Error()
	}
	if len(rec.Seed) > 0 {
		data, err := json.Marshal(rec.Seed)
		if err != nil {
			return nil, err
		}
		run.Seed = string(data)
	}

	run.History = make([]Attempt, 0, len(rec.History))
	for _, a := range rec.History {
		run.History = append(run.History, Attempt{
			RunID:       rec.RunID,
			Idx:         a.Index,
			Temperature: a.Temperature,
			Artifact:    a.Artifact,
			Valid:       a.Outcome.IsValid,
			Message:     a.Outcome.Message,
			DurationMS:  a.Duration.Milliseconds(),
		})
	}
	return run, nil
}

// SeedMap 解码保存的种子输入
func (r *Run) SeedMap() (map[string]any, error) {
	if r.Seed == "" {
		return nil, nil
	}
	var seed map[string]any
	if err := json.Unmarshal([]byte(r.Seed), &seed); err != nil {
		return nil, err
	}
	return seed, nil
}
