//go:build !windows

package hal

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/poppolopoppo/icebuilder/utils"
)

func isTty() bool {
	_, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	return err == nil
}

func isInteractiveShell() bool {
	if !isTty() {
		return false
	}
	term := os.Getenv("TERM")
	switch term {
	case "xterm", "alacritty", "screen", "tmux":
		return true
	default:
		return strings.HasPrefix(term, "xterm-") || strings.HasPrefix(term, "screen-") || strings.HasPrefix(term, "tmux-")
	}
}

// findHostIceHome probes the prefixes used by Ice packages, slice2cpp is expected in <prefix>/bin.
func findHostIceHome() (utils.Directory, bool) {
	prefixes := []string{"/usr", "/usr/local", "/opt/Ice"}
	if runtime.GOOS == "darwin" {
		prefixes = append(prefixes, "/opt/homebrew")
	}
	for _, prefix := range prefixes {
		iceHome := utils.MakeDirectory(prefix)
		if iceHome.Folder("bin").File("slice2cpp").Exists() || iceHome.Folder("bin").File("slice2cs").Exists() {
			return iceHome, true
		}
	}
	return utils.Directory{}, false
}
