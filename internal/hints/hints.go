// Package hints turns common CLI failures into one actionable line.
// Every hint reads "\n  hint: <text>" so it can be appended to an error message.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-cfextrato/internal/fileutil"
)

const prefix = "\n  hint: "

// InContainer reports whether the process runs in a container.
// Replaced in tests.
var InContainer = func() bool {
	return os.Getenv("CFEXTRATO_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI systems whose runners lack a Chrome sandbox.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// InCI reports whether a known CI variable is set.
func InCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the Chrome settings that usually fix a failed
// launch, and always offers the browser-free backend.
func ForBrowserConnect() string {
	var tips []string
	if (InCI() || InContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		tips = append(tips, "set ROD_NO_SANDBOX=1 inside Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		tips = append(tips, "point ROD_BROWSER_BIN at an installed Chrome")
	}
	tips = append(tips, "or use --backend fpdf to render without Chrome")
	return formatHints(tips)
}

// ForTimeout is shown when printing a page runs past the deadline.
func ForTimeout() string {
	return format("receipts with many items print slower, raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the file in the user
// config directory when that was one of the searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(slashed(p), ".config/go-cfextrato") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when an output directory or file cannot be written.
func ForOutputDirectory() string {
	return format("check the parent directory exists and is writable")
}

// ForMalformedDocument is shown when the input is not a usable receipt.
func ForMalformedDocument() string {
	return format(`input must be a CFe-SAT XML (root <CFe><infCFe Id="CFe...">)`)
}

// ForLogo is shown when the logo cannot be read.
func ForLogo() string {
	return format("use a PNG, JPG, GIF or SVG file of at most 2MB")
}

// slashed normalizes separators so Windows paths match too.
func slashed(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return prefix + hint
}

func formatHints(tips []string) string {
	return format(strings.Join(tips, "; "))
}
