package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "work-tracker.com/work-tracker/internal/models"
)

type StateRepository struct {
	db *gorm.DB
}

var ErrSnapshotNotFound = errors.New("snapshot not found")

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Upsert replaces the user's row with stateJSON. Concurrent writers for the
// same user are not ordered: whichever commits last wins.
func (r *StateRepository) Upsert(ctx context.Context, username, stateJSON string) (*model.UserData, error) {
	row := &model.UserData{
		Username:    username,
		StateJSON:   stateJSON,
		LastUpdated: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_json", "last_updated"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	return row, nil
}

func (r *StateRepository) FindByUsername(ctx context.Context, username string) (*model.UserData, error) {
	var row model.UserData
	err := r.db.WithContext(ctx).First(&row, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *StateRepository) List(ctx context.Context) ([]model.UserData, error) {
	var rows []model.UserData
	err := r.db.WithContext(ctx).Order("username asc").Find(&rows).Error
	return rows, err
}
