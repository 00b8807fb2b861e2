package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"gorm.io/gorm"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

var (
	ErrNotExists = errors.New("game does not exist in library")
)

// Library manages the game dirs under one root dir, plus their sqlite index.
// The record file inside each game dir is authoritative; the index exists for
// fast list / search and for issuing record sequence ids.
type Library struct {
	root    string
	db      *gorm.DB
	mu      sync.Mutex
	nextSeq int
}

func Open(root string, db *gorm.DB) (*Library, error) {
	if root == "" {
		return nil, fmt.Errorf("library root is not set")
	}
	if db == nil {
		return nil, fmt.Errorf("library index db is not open")
	}
	stat, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access library root: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("library root %q is not a dir", root)
	}
	return &Library{root: root, db: db}, nil
}

func (l *Library) Root() string {
	return l.root
}

// GameDir returns the fullpath of a game dir. dir is relative to the library
// root, "/" seperated.
func (l *Library) GameDir(dir string) string {
	return filepath.Join(l.root, filepath.FromSlash(dir))
}

// NextSequenceId issues the next record sequence number. Issued numbers are
// unique within the process and resume from the index high water mark across
// restarts.
func (l *Library) NextSequenceId() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.nextSeq == 0 {
		var maxId int64
		result := l.db.Model(&schema.LibraryEntry{}).Select("COALESCE(MAX(id), 0)").Scan(&maxId)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to query index: %w", result.Error)
		}
		l.nextSeq = int(maxId) + 1
	}
	seq := l.nextSeq
	l.nextSeq++
	return seq, nil
}

// Save writes the record file of game into its game dir and upserts the index
// row. game.Dir must be set.
func (l *Library) Save(game *schema.Game) error {
	if game.Dir == "" {
		return fmt.Errorf("game dir is not set")
	}
	dir := l.GameDir(game.Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create game dir: %w", err)
	}
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game record: %w", err)
	}
	if err = atomic.WriteFile(filepath.Join(dir, constants.METADATA_FILENAME), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write game record: %w", err)
	}
	return l.index(game)
}

// index upserts the index row of game. The row is matched by game id first so
// a renamed game dir updates its old row instead of growing a second one.
func (l *Library) index(game *schema.Game) error {
	var entry schema.LibraryEntry
	result := l.db.Limit(1).Find(&entry, "game_id = ? OR dir = ?", game.Id, game.Dir)
	if result.Error != nil {
		return fmt.Errorf("failed to query index: %w", result.Error)
	}
	entry.GameId = game.Id
	entry.Number = game.GetNumber()
	entry.Platform = game.Platform
	entry.Title = game.Title
	entry.Developer = game.Developer
	entry.Genre = game.Genre
	entry.Dir = game.Dir
	entry.Tags = game.Tags
	if result.RowsAffected == 0 {
		result = l.db.Create(&entry)
	} else {
		result = l.db.Save(&entry)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to update index: %w", result.Error)
	}
	return nil
}

// Load reads the record file of the game dir (relative to the library root).
func (l *Library) Load(dir string) (*schema.Game, error) {
	data, err := os.ReadFile(filepath.Join(l.GameDir(dir), constants.METADATA_FILENAME))
	if err != nil {
		return nil, fmt.Errorf("failed to read game record: %w", err)
	}
	var game *schema.Game
	if err = json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to parse game record: %w", err)
	}
	game.Dir = filepath.ToSlash(dir)
	return game, nil
}

// List returns all index rows in record sequence order.
func (l *Library) List() (entries []*schema.LibraryEntry, err error) {
	if result := l.db.Order("id").Find(&entries); result.Error != nil {
		return nil, fmt.Errorf("failed to list index: %w", result.Error)
	}
	return entries, nil
}

// Search does a case-insensitive substring match of query against the title,
// developer, number, genre and tags index columns.
func (l *Library) Search(query string) (entries []*schema.LibraryEntry, err error) {
	q := "%" + query + "%"
	result := l.db.Order("id").Find(&entries,
		"title LIKE ? OR developer LIKE ? OR number LIKE ? OR genre LIKE ? OR tags LIKE ?", q, q, q, q, q)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search index: %w", result.Error)
	}
	return entries, nil
}

// Get finds a game by game id, platform work number or dir.
func (l *Library) Get(key string) (*schema.LibraryEntry, error) {
	var entry schema.LibraryEntry
	result := l.db.Limit(1).Find(&entry, "game_id = ? OR UPPER(number) = UPPER(?) OR dir = ?",
		key, key, strings.Trim(filepath.ToSlash(key), "/"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query index: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotExists, key)
	}
	return &entry, nil
}

// Remove deletes the index row of entry, and unless keepFiles is set, the
// game dir itself.
func (l *Library) Remove(entry *schema.LibraryEntry, keepFiles bool) error {
	if result := l.db.Delete(&schema.LibraryEntry{}, entry.ID); result.Error != nil {
		return fmt.Errorf("failed to delete index row: %w", result.Error)
	}
	if keepFiles || entry.Dir == "" {
		return nil
	}
	dir := filepath.Clean(entry.Dir)
	if dir == "." || dir == ".." || strings.HasPrefix(dir, "..") {
		return fmt.Errorf("refuse to remove suspicious game dir %q", entry.Dir)
	}
	if err := os.RemoveAll(l.GameDir(dir)); err != nil {
		return fmt.Errorf("failed to remove game dir: %w", err)
	}
	return nil
}

// Rename moves the game dir of game to newDir (relative to the library root)
// and updates the record file and index row. No-op when the name is unchanged.
func (l *Library) Rename(game *schema.Game, newDir string) error {
	newDir = strings.Trim(filepath.ToSlash(newDir), "/")
	if newDir == "" || newDir == game.Dir {
		return nil
	}
	to := l.GameDir(newDir)
	if util.FileExists(to) {
		return fmt.Errorf("dir %q already exists", newDir)
	}
	if err := atomic.ReplaceFile(l.GameDir(game.Dir), to); err != nil {
		return fmt.Errorf("failed to rename game dir: %w", err)
	}
	game.Dir = newDir
	return l.Save(game)
}
