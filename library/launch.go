package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/schema"
	"github.com/sagan/erolauncher/util"
)

var ErrNoExecutable = errors.New("no game executable found")

// Helper binaries that ship next to the real game binary.
var executableBlacklist = []string{"unins", "uninst", "config", "setting", "crashhandler", "notification_helper"}

// Launch starts the game of entry detached, with the game dir as working dir.
// launchCommand optionally wraps the executable (e.g. "wine"); it is split
// shell style. The found executable is remembered in the record, and the
// last played time and play count of entry are updated.
func (l *Library) Launch(entry *schema.LibraryEntry, launchCommand string) error {
	game, err := l.Load(entry.Dir)
	if err != nil {
		return err
	}
	dir := l.GameDir(entry.Dir)
	executable := game.ExecutablePath
	if executable == "" {
		if executable, err = FindExecutable(dir); err != nil {
			return err
		}
		game.ExecutablePath = executable
		if err = l.Save(game); err != nil {
			log.Warnf("failed to save record of %s: %v", entry.Dir, err)
		}
	}
	fullpath := filepath.Join(dir, filepath.FromSlash(executable))
	if !util.FileExists(fullpath) {
		return fmt.Errorf("%w: %q does not exist", ErrNoExecutable, executable)
	}
	var args []string
	if launchCommand != "" {
		if args, err = shlex.Split(launchCommand); err != nil {
			return fmt.Errorf("invalid launch command: %w", err)
		}
	}
	args = append(args, fullpath)
	command := exec.Command(args[0], args[1:]...)
	command.Dir = dir
	if err = command.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", args[0], err)
	}
	log.Infof("launched %q (pid %d)", executable, command.Process.Pid)
	// the game keeps running on its own
	if err = command.Process.Release(); err != nil {
		log.Debugf("failed to release process: %v", err)
	}
	entry.LastPlayed = time.Now().Unix()
	entry.PlayCount++
	if result := l.db.Save(entry); result.Error != nil {
		return fmt.Errorf("failed to update index: %w", result.Error)
	}
	return nil
}

// FindExecutable probes dir for a game binary, returning its path relative to
// dir, "/" seperated. Shallower files win over nested ones, then
// constants.ExecutableExts order decides, with known helper binaries
// (uninstallers etc.) losing to anything else.
func FindExecutable(dir string) (string, error) {
	var candidates []string
	err := filepath.WalkDir(dir, func(fullpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if fullpath != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == constants.TMP_DIR ||
				d.Name() == constants.IMAGES_DIR) {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(constants.ExecutableExts, strings.ToLower(filepath.Ext(d.Name()))) {
			rel, err := filepath.Rel(dir, fullpath)
			if err != nil {
				return err
			}
			candidates = append(candidates, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk game dir: %w", err)
	}
	if len(candidates) == 0 {
		return "", ErrNoExecutable
	}
	slices.SortStableFunc(candidates, func(a, b string) int {
		if ra, rb := executableRank(a), executableRank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return candidates[0], nil
}

// Lower is better.
func executableRank(p string) (rank int) {
	rank = strings.Count(p, "/") * 100
	if i := slices.Index(constants.ExecutableExts, strings.ToLower(path.Ext(p))); i >= 0 {
		rank += i * 10
	}
	base := strings.ToLower(path.Base(p))
	for _, word := range executableBlacklist {
		if strings.Contains(base, word) {
			rank += 1000
			break
		}
	}
	return rank
}
