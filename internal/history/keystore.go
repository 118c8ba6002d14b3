package history

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderflow/orderflowgo/internal/models"
)

// ErrNotFound is returned by Keystore.Load when no value exists for a key
var ErrNotFound = errors.New("keystore: key not found")

// Keystore is a string-keyed blob store backing history persistence
type Keystore interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
}

// GormKeystore persists values as rows of the app_state table
type GormKeystore struct {
	db *gorm.DB
}

// NewGormKeystore creates a keystore on top of an open GORM connection
func NewGormKeystore(db *gorm.DB) *GormKeystore {
	return &GormKeystore{db: db}
}

// Load reads the stored value for key
func (s *GormKeystore) Load(key string) ([]byte, error) {
	var row models.AppState
	err := s.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(row.Value), nil
}

// Save upserts the value for key
func (s *GormKeystore) Save(key string, value []byte) error {
	row := models.AppState{Key: key, Value: datatypes.JSON(value)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
