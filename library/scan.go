package library

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pathspec "github.com/shibumi/go-pathspec"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

// FindUnregistered returns the dirs directly under the library root that have
// neither a record file nor an index row. ignorePatterns are gitignore style.
// Dot dirs are always skipped.
func (l *Library) FindUnregistered(ignorePatterns []string) (dirs []string, err error) {
	dirEntries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root: %w", err)
	}
	var indexed []string
	if result := l.db.Model(&schema.LibraryEntry{}).Pluck("dir", &indexed); result.Error != nil {
		return nil, fmt.Errorf("failed to query index: %w", result.Error)
	}
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if strings.HasPrefix(name, ".") || name == constants.TMP_DIR {
			continue
		}
		if len(ignorePatterns) > 0 {
			// the trailing "/" makes dir-only patterns like "sorted/" match
			match, err := pathspec.GitIgnore(ignorePatterns, name+"/")
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern: %w", err)
			}
			if match {
				log.Debugf("scan: skip ignored dir %s", name)
				continue
			}
		}
		if slices.Contains(indexed, name) {
			continue
		}
		if util.FileExists(filepath.Join(l.root, name, constants.METADATA_FILENAME)) {
			continue
		}
		dirs = append(dirs, name)
	}
	return dirs, nil
}

// Reindex loads every record file under the library root and upserts its
// index row. Used to rebuild data.db after it is lost or moved between
// machines.
func (l *Library) Reindex() (count int, err error) {
	dirEntries, err := os.ReadDir(l.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read library root: %w", err)
	}
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() || strings.HasPrefix(dirEntry.Name(), ".") {
			continue
		}
		name := dirEntry.Name()
		if !util.FileExists(filepath.Join(l.root, name, constants.METADATA_FILENAME)) {
			continue
		}
		game, err := l.Load(name)
		if err != nil {
			log.Warnf("failed to load record of %s: %v", name, err)
			continue
		}
		if err = l.index(game); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Prune deletes index rows whose game dir no longer exists on disk.
func (l *Library) Prune() (dirs []string, err error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if util.FileExists(l.GameDir(entry.Dir)) {
			continue
		}
		if result := l.db.Delete(entry); result.Error != nil {
			return dirs, fmt.Errorf("failed to delete index row of %s: %w", entry.Dir, result.Error)
		}
		dirs = append(dirs, entry.Dir)
	}
	return dirs, nil
}
