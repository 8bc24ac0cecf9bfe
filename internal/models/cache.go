package models

import "time"

// CacheRecord points at the most recently uploaded document copy.
type CacheRecord struct {
	FileName      string    `json:"file_name"`
	CacheFileName string    `json:"cache_file_name"`
	FileHash      string    `json:"file_hash"`
	CachedAt      time.Time `json:"cached_at"`
	FilePath      string    `json:"file_path"`
}
