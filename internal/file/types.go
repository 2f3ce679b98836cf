package file

import (
	"errors"
	"time"
)

// File is the metadata record of one uploaded file of a FILE share
type File struct {
	ID        string    `json:"id"`
	ShareID   string    `json:"shareId"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Common errors
var (
	ErrNotFound = errors.New("file not found")
)
