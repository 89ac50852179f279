package hal

import (
	"os"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/utils"
)

var LogHAL = base.NewLogCategory("HAL")

// ICE_HOME overrides any Ice installation found on the host.
const ICE_HOME_ENV = "ICE_HOME"

func InitHAL() {
	base.SetEnableAnsiColor(isInteractiveShell())
}

// FindIceHome looks for an Ice installation, in the environment first then in host specific locations.
func FindIceHome() base.Optional[utils.Directory] {
	if iceHome, ok := os.LookupEnv(ICE_HOME_ENV); ok && len(iceHome) > 0 {
		base.LogVerbose(LogHAL, "found Ice home in %s environment variable: %q", ICE_HOME_ENV, iceHome)
		return base.NewOption(utils.MakeDirectory(iceHome))
	}
	if iceHome, ok := findHostIceHome(); ok {
		base.LogVerbose(LogHAL, "found Ice home installed in %q", iceHome)
		return base.NewOption(iceHome)
	}
	return base.NoneOption[utils.Directory]()
}
