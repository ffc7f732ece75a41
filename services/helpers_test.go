package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-collector/config"
	"github.com/vnkhanh/survey-collector/models"
	"github.com/vnkhanh/survey-collector/utils"
)

func init() {
	utils.PasswordCost = 4
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// sampleSurvey: một câu mỗi loại, theo thứ tự single, multiple, scale, text.
func sampleSurvey(public bool) CreateSurveyRequest {
	return CreateSurveyRequest{
		Title:    "Customer feedback",
		IsPublic: public,
		Questions: []CreateQuestionRequest{
			{Text: "Favourite colour", Type: models.QuestionSingleChoice, IsRequired: true, Choices: []string{"Red", "Green", "Blue"}},
			{Text: "Hobbies", Type: models.QuestionMultipleChoice, Choices: []string{"Music", "Sport"}},
			{Text: "Rate us", Type: models.QuestionScale, IsRequired: true},
			{Text: "Comments", Type: models.QuestionText},
		},
	}
}

func mustCreateSurvey(t *testing.T, svc *SurveyService, ownerID uint, req CreateSurveyRequest) *models.Survey {
	t.Helper()
	s, err := svc.Create(context.Background(), ownerID, req)
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	return s
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func hasRule(err error, rule string) bool {
	ve, ok := AsValidationErrors(err)
	return ok && ve.HasRule(rule)
}

// memoryCache là StatsCache trong bộ nhớ, đếm số lần gọi.
type memoryCache struct {
	mu          sync.Mutex
	data        map[uint][]QuestionStats
	gets        int
	invalidated []uint
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[uint][]QuestionStats{}}
}

func (c *memoryCache) Get(_ context.Context, id uint) ([]QuestionStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[id], nil
}

func (c *memoryCache) Set(_ context.Context, id uint, stats []QuestionStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = stats
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, uint) ([]QuestionStats, error) {
	return nil, fmt.Errorf("redis down")
}
func (failingCache) Set(context.Context, uint, []QuestionStats) error {
	return fmt.Errorf("redis down")
}
func (failingCache) Invalidate(context.Context, uint) error { return fmt.Errorf("redis down") }
