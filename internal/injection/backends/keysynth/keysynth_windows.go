//go:build windows

package keysynth

import (
	"fmt"
	"os/exec"
)

func typerAvailable() bool {
	_, err := exec.LookPath("powershell")
	return err == nil
}

func typeRune(r rune) error {
	script := fmt.Sprintf(
		`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('%s')`,
		string(r),
	)
	cmd := exec.Command("powershell", "-NoProfile", "-Command", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("keysynth: SendKeys: %w", err)
	}
	return nil
}
