package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cldixon/moodjournal/internal/config"
)

// PIDPath returns the path to the server PID file
func PIDPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.pid"), nil
}

// WritePID records the current process ID
func WritePID() error {
	path, err := PIDPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}

// ReadPID reads the PID from the PID file
func ReadPID() (int, error) {
	path, err := PIDPath()
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// RemovePID removes the PID file
func RemovePID() error {
	path, err := PIDPath()
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsRunning reports whether the process named in the PID file is alive.
// A stale PID file is removed.
func IsRunning() (bool, int, error) {
	pid, err := ReadPID()
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	// signal 0 only checks for existence
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// StopRunning sends SIGTERM to the running server and waits up to timeout
// for it to exit
func StopRunning(timeout time.Duration) error {
	pid, err := ReadPID()
	if err != nil {
		return fmt.Errorf("failed to read PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal PID %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if running, _, _ := IsRunning(); !running {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server (PID %d) did not stop within %s", pid, timeout)
}
