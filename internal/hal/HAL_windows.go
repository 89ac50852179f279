//go:build windows

package hal

import (
	"os"
	"sort"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/utils"
)

const ICE_REGISTRY_KEY = `SOFTWARE\ZeroC`

func isInteractiveShell() bool {
	stdout := windows.Handle(os.Stdout.Fd())

	var originalMode uint32
	if err := windows.GetConsoleMode(stdout, &originalMode); err != nil {
		return false
	}

	if err := windows.SetConsoleMode(stdout, originalMode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		base.LogVerbose(LogHAL, "failed to set console mode with %v", err)
		return false
	}
	return true
}

// findHostIceHome reads the InstallDir of the most recent Ice version registered by the installer.
func findHostIceHome() (utils.Directory, bool) {
	zeroc, err := registry.OpenKey(registry.LOCAL_MACHINE, ICE_REGISTRY_KEY, registry.ENUMERATE_SUB_KEYS|registry.WOW64_32KEY)
	if err != nil {
		base.LogTrace(LogHAL, "can't open registry key %q: %v", ICE_REGISTRY_KEY, err)
		return utils.Directory{}, false
	}
	defer zeroc.Close()

	versions, err := zeroc.ReadSubKeyNames(-1)
	if err != nil {
		base.LogTrace(LogHAL, "can't enumerate registry key %q: %v", ICE_REGISTRY_KEY, err)
		return utils.Directory{}, false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))

	for _, version := range versions {
		key, err := registry.OpenKey(zeroc, version, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		installDir, _, err := key.GetStringValue("InstallDir")
		key.Close()

		if err == nil && len(installDir) > 0 {
			base.LogTrace(LogHAL, "registry: %s\\%s\\InstallDir = %q", ICE_REGISTRY_KEY, version, installDir)
			return utils.MakeDirectory(installDir), true
		}
	}
	return utils.Directory{}, false
}
