package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Item pairs a discovered input with its output location.
type Item struct {
	Input  string
	Output string
}

// Discover lists files under root whose lower-cased extension is in
// extensions. Hidden entries are skipped, as is skipDir when it lies inside
// root. Results are sorted.
func Discover(root string, extensions []string, recursive bool, skipDir string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", root)
	}

	wanted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		name := entry.Name()
		if entry.IsDir() {
			if !recursive || strings.HasPrefix(name, ".") || (skipDir != "" && path == skipDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(name))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// MapOutputs places each file at its path relative to inputDir under outputDir.
func MapOutputs(inputDir, outputDir string, files []string) ([]Item, error) {
	items := make([]Item, 0, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(inputDir, file)
		if err != nil {
			return nil, fmt.Errorf("relative path for %s: %w", file, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, errors.New("file " + file + " is outside " + inputDir)
		}
		items = append(items, Item{Input: file, Output: filepath.Join(outputDir, rel)})
	}
	return items, nil
}
