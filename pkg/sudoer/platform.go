package sudoer

import "runtime"

// Platform is the OS family of the host.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
	PlatformDarwin  Platform = "darwin"
	PlatformOther   Platform = "other"
)

// DetectPlatform maps the host OS onto a Platform.
func DetectPlatform() Platform {
	return platformFromGOOS(runtime.GOOS)
}

func platformFromGOOS(goos string) Platform {
	switch goos {
	case "linux":
		return PlatformLinux
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformDarwin
	default:
		return PlatformOther
	}
}
