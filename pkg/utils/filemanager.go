// =============================================================================
// Shelf Inventory Reconciler - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the CLI, including:
//   - Scan file discovery in the input directory
//   - Archival of processed scan files
//   - Output path construction for report workbooks
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - Scan files are moved to the archive directory after a successful run
//   - Failed scan files remain in their original location
//   - Report workbooks stay in the output directory; a same-day re-run with
//     the same parameters overwrites the previous workbook
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScanFilePatterns are the file types accepted as scan lists.
var ScanFilePatterns = []string{"*.csv", "*.txt", "*.xlsx", "*.xlsm"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for report runs.
type FileManager struct {
	// InputDir is the directory where scan files are placed.
	InputDir string

	// OutputDir is the directory where report workbooks are written.
	OutputDir string

	// ArchiveDir is the directory for archived scan files.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/scan.csv
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether scan files are archived after a
	// successful run.
	ArchiveOnSuccess bool

	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		ArchiveDir:       archiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverScanFiles lists the scan files in the input directory, sorted by
// name so runs are reproducible.
//
// PARAMETERS:
//   - patterns: Glob patterns to match. Defaults to ScanFilePatterns.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if a pattern is malformed.
func (fm *FileManager) DiscoverScanFiles(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = ScanFilePatterns
	}

	seen := make(map[string]bool)
	var result []string
	for _, pattern := range patterns {
		files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}

		for _, file := range files {
			info, err := os.Stat(file)
			if err != nil || info.IsDir() || seen[file] {
				continue
			}
			seen[file] = true
			result = append(result, file)
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a scan file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file, or filePath when archival is disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.archivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// archivePath constructs the archive path for a file.
func (fm *FileManager) archivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		if fm.now != nil {
			now = fm.now()
		}
		return filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT PATHS
// =============================================================================

// OutputPath returns the path of a report workbook in the output directory.
// The .xlsx extension is added when missing.
func (fm *FileManager) OutputPath(fileName string) string {
	if !strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		fileName += ".xlsx"
	}
	return filepath.Join(fm.OutputDir, filepath.Base(fileName))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
