package models

import "gorm.io/datatypes"

// AppState is a string-keyed row of serialized application state.
// The full order history is stored under a single key as one JSON
// document, mirroring the layout earlier versions persisted.
type AppState struct {
	Key   string         `gorm:"primaryKey" json:"key"`
	Value datatypes.JSON `gorm:"type:jsonb" json:"value"`
}

// TableName specifies the table name for AppState
func (AppState) TableName() string {
	return "app_state"
}

// HistoryStateKey is the row key holding the serialized batch list
const HistoryStateKey = "order_history"
