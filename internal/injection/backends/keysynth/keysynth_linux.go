//go:build linux

package keysynth

import (
	"fmt"
	"os/exec"
)

func typerAvailable() bool {
	_, err := exec.LookPath("xdotool")
	return err == nil
}

func typeRune(r rune) error {
	cmd := exec.Command("xdotool", "type", "--clearmodifiers", string(r))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("keysynth: xdotool type: %w", err)
	}
	return nil
}
