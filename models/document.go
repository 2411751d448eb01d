package models

import "time"

// DocumentInfo describes one file in a vendor's document collection.
type DocumentInfo struct {
	Vendor     string    `json:"vendor"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	Indexed    bool      `json:"indexed"`
}

// RebuildAccepted is returned when a rebuild is handed to the worker queue.
type RebuildAccepted struct {
	Vendor string `json:"vendor"`
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}
