package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// DirStats aggregates a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanDirectory walks root and returns validated document files, skipping
// hidden entries. Per-file validation failures are counted, not fatal.
func ScanDirectory(root string) ([]FileInfo, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileInfo
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if IsHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++

		info, err := CheckFile(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		results = append(results, info)
		return nil
	})
	if err != nil {
		return results, stats, err
	}
	return results, stats, nil
}
