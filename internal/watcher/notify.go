package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// fallbackOutput receives alerts when no desktop notifier is available.
var fallbackOutput io.Writer = os.Stderr

// Notify sends a desktop notification for the given alert. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it falls
// back to printing to stderr.
func Notify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		return notifyMacOS(alert)
	case "linux":
		return notifyLinux(alert)
	default:
		return notifyFallback(alert)
	}
}

// notifyMacOS sends a notification via osascript on macOS.
func notifyMacOS(alert Alert) error {
	script := fmt.Sprintf(
		`display notification %q with title "reposcan" subtitle %q`,
		alert.Message, alert.Title,
	)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return notifyFallback(alert)
	}
	return nil
}

// notifyLinux sends a notification via notify-send on Linux.
func notifyLinux(alert Alert) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return notifyFallback(alert)
	}

	urgency := "normal"
	switch alert.Level {
	case LevelCritical:
		urgency = "critical"
	case LevelInfo:
		urgency = "low"
	}

	title := fmt.Sprintf("reposcan: %s", alert.Title)
	if err := exec.Command("notify-send", "-u", urgency, title, alert.Message).Run(); err != nil {
		return notifyFallback(alert)
	}
	return nil
}

// notifyFallback prints the alert when no desktop notification system is
// available.
func notifyFallback(alert Alert) error {
	_, err := fmt.Fprintf(fallbackOutput, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}

// Notifier names the desktop notification command Notify would use on this
// system, and reports whether it is installed.
func Notifier() (string, bool) {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "osascript"
	case "linux":
		name = "notify-send"
	default:
		return "", false
	}
	_, err := exec.LookPath(name)
	return name, err == nil
}
