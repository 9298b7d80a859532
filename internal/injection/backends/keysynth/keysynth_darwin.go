//go:build darwin

package keysynth

import (
	"fmt"
	"os/exec"
	"strings"
)

func typerAvailable() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func typeRune(r rune) error {
	script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, escapeAppleScript(string(r)))
	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("keysynth: osascript keystroke: %w", err)
	}
	return nil
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
