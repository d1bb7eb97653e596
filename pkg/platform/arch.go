package platform

import "runtime"

// NodeArch maps the Go architecture name onto the naming the addon
// ecosystem and the generator use.
func NodeArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	case "arm":
		return "arm"
	case "arm64":
		return "arm64"
	case "ppc64":
		return "ppc64"
	case "s390x":
		return "s390x"
	default:
		return runtime.GOARCH
	}
}
