package synth

import (
	"fmt"
	"os/exec"
)

// Play plays an audio file with whichever local player is installed.
// Playback blocks until the player exits; the caller still owns the file.
func Play(audioFile string) error {
	var cmd *exec.Cmd

	switch {
	case isCommandAvailable("afplay"):
		// macOS
		cmd = exec.Command("afplay", audioFile)
	case isCommandAvailable("aplay"):
		// Linux with ALSA
		cmd = exec.Command("aplay", audioFile)
	case isCommandAvailable("paplay"):
		// Linux with PulseAudio
		cmd = exec.Command("paplay", audioFile)
	case isCommandAvailable("ffplay"):
		// Cross-platform with ffmpeg
		cmd = exec.Command("ffplay", "-nodisp", "-autoexit", audioFile)
	default:
		return fmt.Errorf("no audio player found")
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}

	return nil
}

// isCommandAvailable checks if a command is available
func isCommandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
