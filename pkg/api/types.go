package api

import (
	"github.com/segmentio/ksuid"
	"github.com/ssargent/gdstxt/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// ConvertResponse describes a conversion whose output was stored
type ConvertResponse struct {
	ID        string `json:"id"`
	RunID     string `json:"run_id"`
	Direction string `json:"direction"`
	Records   int    `json:"records"`
	Skipped   int    `json:"skipped"`
	Size      int64  `json:"size"`
}

// TagInfo is one row of the tag table as served by /tags
type TagInfo struct {
	Tag  uint8  `json:"tag"`
	Hex  string `json:"hex"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string // empty disables authentication
	MaxBodyBytes int64
}

// ResultStore persists conversion outputs
type ResultStore interface {
	Create(res *storage.Result) (ksuid.KSUID, error)
	Read(id ksuid.KSUID) (*storage.Result, error)
	Delete(id ksuid.KSUID) error
}
