package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/hints"
)

// Doctor statuses, from best to worst.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult is the JSON document printed by "doctor --json".
type doctorResult struct {
	Status   string      `json:"status"`
	Backend  string      `json:"backend"`
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	Receipt  receiptInfo `json:"receipt"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// receiptInfo covers what every extrato needs regardless of backend.
type receiptInfo struct {
	Template bool   `json:"template"`
	Style    bool   `json:"style"`
	Logo     string `json:"logo,omitempty"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// doctorProbes run in order; later probes may read what earlier ones found.
var doctorProbes = []func(*doctorResult){
	probeBrowser,
	probeEnvironment,
	probeReceiptAssets,
	probeTempDir,
}

// runDoctorCmd prints the diagnosis and exits 1 only when a conversion with
// the selected backend cannot succeed.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	r := runDoctor()
	if *asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(r)
	} else {
		printDoctorResult(env.Stdout, r)
	}

	if r.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor() *doctorResult {
	r := &doctorResult{
		Backend: doctorBackend(),
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}
	for _, probe := range doctorProbes {
		probe(r)
	}

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// doctorBackend mirrors the CFEXTRATO_BACKEND override used by convert.
func doctorBackend() string {
	if b := strings.ToLower(strings.TrimSpace(os.Getenv(envBackend))); b != "" {
		return b
	}
	return cfextrato.BackendRod
}

// probeBrowser locates Chrome. Only the rod backend treats a missing
// browser as an error.
func probeBrowser(r *doctorResult) {
	path := r.Env.BrowserBin
	if path == "" {
		var ok bool
		if path, ok = launcher.LookPath(); !ok {
			browserMissing(r, "Chrome/Chromium not found")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		browserMissing(r, "Chrome not found at "+path)
		return
	}

	r.Chrome = chromeInfo{Found: true, Path: path, Sandbox: r.Env.NoSandbox != "1"}

	// #nosec G204 -- path comes from ROD_BROWSER_BIN or rod's lookup
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

func browserMissing(r *doctorResult, msg string) {
	if r.Backend == cfextrato.BackendFPDF {
		r.warn("%s (not needed by the fpdf backend)", msg)
		return
	}
	r.fail("%s. Install Chrome, set ROD_BROWSER_BIN, or use --backend fpdf", msg)
}

// probeEnvironment flags container and CI runs, where Chrome usually needs
// its sandbox disabled.
func probeEnvironment(r *doctorResult) {
	r.Env.Container, r.Env.ContainerHint = containerSignal()
	r.Env.CI = hints.InCI()

	if r.Backend != cfextrato.BackendRod || r.Env.NoSandbox == "1" {
		return
	}
	if r.Env.Container || r.Env.CI {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// containerSignal names the first container marker found, "" for none.
func containerSignal() (bool, string) {
	switch {
	case os.Getenv(envContainer) == "1":
		return true, envContainer + "=1"
	case hints.InContainer():
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// probeReceiptAssets loads the built-in layout and the logo from
// CFEXTRATO_LOGO, if set.
func probeReceiptAssets(r *doctorResult) {
	loader, err := cfextrato.NewAssetLoader("")
	if err != nil {
		r.fail("Built-in assets unavailable: %v", err)
		return
	}
	if _, err := loader.LoadTemplate(cfextrato.DefaultTemplate); err != nil {
		r.fail("Receipt template unavailable: %v", err)
	} else {
		r.Receipt.Template = true
	}
	if _, err := loader.LoadStyle(cfextrato.DefaultStyle); err != nil {
		r.fail("Default style unavailable: %v", err)
	} else {
		r.Receipt.Style = true
	}

	path := os.Getenv(envLogo)
	if path == "" {
		return
	}
	r.Receipt.Logo = path
	if _, err := cfextrato.LoadLogo(path); err != nil {
		r.fail("%s: %v", envLogo, err)
	}
}

// probeTempDir checks the directory where rod writes page files.
func probeTempDir(r *doctorResult) {
	f, err := os.CreateTemp("", "cfextrato-doctor-*")
	if err != nil {
		r.fail("Temp directory not writable: %s", os.TempDir())
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	r.System.TempWritable = true
}

// doctorLine is one "[TAG] text" row of the human report.
type doctorLine struct {
	tag  string
	text string
}

func okLine(format string, args ...any) doctorLine {
	return doctorLine{"OK", fmt.Sprintf(format, args...)}
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintf(w, "cfextrato doctor\n\nBackend: %s\n\n", r.Backend)

	printSection(w, "Chrome/Chromium", browserLines(r))

	envLines := []doctorLine{okLine("Platform: %s/%s", r.Env.OS, r.Env.Arch)}
	if r.Env.Container {
		envLines = append(envLines, okLine("Container: detected (%s)", r.Env.ContainerHint))
	}
	if r.Env.CI {
		envLines = append(envLines, okLine("CI: detected"))
	}
	printSection(w, "Environment", envLines)

	printSection(w, "Receipt", []doctorLine{
		checkLine(r.Receipt.Template, "Template: "+cfextrato.DefaultTemplate),
		checkLine(r.Receipt.Style, "Style: "+cfextrato.DefaultStyle),
	})
	printSection(w, "System", []doctorLine{checkLine(r.System.TempWritable, "Temp directory writable")})

	if len(r.Warnings) > 0 {
		printSection(w, "Warnings:", tagged("WARN", r.Warnings))
	}
	if len(r.Errors) > 0 {
		printSection(w, "Errors:", tagged("ERROR", r.Errors))
	}

	summary := map[string]string{
		statusReady:    "Ready to convert",
		statusWarnings: "Ready with warnings",
		statusErrors:   "Not ready (see errors above)",
	}
	fmt.Fprintf(w, "Status: %s\n", summary[r.Status])
}

func browserLines(r *doctorResult) []doctorLine {
	if !r.Chrome.Found {
		if r.Backend == cfextrato.BackendFPDF {
			return []doctorLine{{"WARN", "Not found"}}
		}
		return []doctorLine{{"ERROR", "Not found"}}
	}
	lines := []doctorLine{okLine("Found at %s", r.Chrome.Path)}
	if r.Chrome.Version != "" {
		lines = append(lines, okLine("Version: %s", r.Chrome.Version))
	}
	if r.Chrome.Sandbox {
		return append(lines, okLine("Sandbox: enabled"))
	}
	return append(lines, okLine("Sandbox: disabled (ROD_NO_SANDBOX=1)"))
}

func checkLine(passed bool, text string) doctorLine {
	if passed {
		return okLine("%s", text)
	}
	return doctorLine{"ERROR", text}
}

func tagged(tag string, msgs []string) []doctorLine {
	lines := make([]doctorLine, len(msgs))
	for i, m := range msgs {
		lines[i] = doctorLine{tag, m}
	}
	return lines
}

func printSection(w io.Writer, title string, lines []doctorLine) {
	fmt.Fprintln(w, title)
	for _, l := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", l.tag, l.text)
	}
	fmt.Fprintln(w)
}
