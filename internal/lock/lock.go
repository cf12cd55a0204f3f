// Package lock keeps a single interactive board session per config
// directory. The lockfile stores "pid|executable"; a lock whose process is
// gone, or whose PID now belongs to a different program, is stale.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrHeld is returned when another live session owns the lock
var ErrHeld = errors.New("another session is already running")

// Holder describes the process recorded in a lockfile
type Holder struct {
	PID        int
	Executable string
	Alive      bool
}

type Lock struct {
	path string
}

func Path(dir string) string {
	return filepath.Join(dir, constants.TUILockfileName)
}

func readHolder(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}

	pidStr, exe, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok || strings.TrimSpace(exe) == "" {
		return Holder{}, fmt.Errorf("lockfile %s is malformed", path)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Holder{}, fmt.Errorf("invalid process ID in lockfile %s", path)
	}

	h := Holder{PID: pid, Executable: exe}
	process, err := findProcessFunc(pid)
	if err == nil && process != nil && process.Executable() == exe {
		h.Alive = true
	}
	return h, nil
}

// Inspect reports the holder of the lock in dir. A missing lockfile
// returns (nil, nil).
func Inspect(dir string) (*Holder, error) {
	h, err := readHolder(Path(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func selfExecutable() string {
	if p, err := findProcessFunc(os.Getpid()); err == nil && p != nil {
		return p.Executable()
	}
	return filepath.Base(os.Args[0])
}

// Acquire takes the lock in dir, clearing a stale or malformed lockfile
// left by a crashed session.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := Path(dir)

	h, err := readHolder(path)
	switch {
	case err == nil && h.Alive:
		return nil, fmt.Errorf("%w (pid %d)", ErrHeld, h.PID)
	case err == nil || !os.IsNotExist(err):
		logger.Warn("Removing stale lockfile", "path", path, "pid", h.PID)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return nil, ErrHeld
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d|%s", os.Getpid(), selfExecutable()); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lockfile. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
