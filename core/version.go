package core

// Build variables, set with -ldflags "-X github.com/ygmpkk/lineslice/core.GitSHA=..."
var (
	Version   = "0.0.0"
	GitSHA    = "0000000"
	BuildTime = ""
)

// VersionLine returns the version with the git sha appended, when known.
func VersionLine(name string) string {
	if GitSHA == "" || GitSHA == "0000000" {
		return name + " " + Version
	}
	return name + " " + Version + " (git:" + GitSHA + ")"
}
