/*
Package version reports build information about flakeid.
The package variables are set at build time with -ldflags:

	go build -ldflags "-X github.com/mantono/flakeid/pkg/version.version=1.0.0"

Available values and defaults:

	version   = "unknown"
	branch    = "unknown"
	revision  = "unknown"
	buildDate = "unknown"
	buildUser = "unknown"
*/
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	goversion "rsc.io/goversion/version"
)

const appName = "flakeid"

var (
	version   = "unknown"
	branch    = "unknown"
	revision  = "unknown"
	buildDate = "unknown"
	buildUser = "unknown"
)

// Info holds version and build info about the program.
type Info struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Revision  string `json:"revision"`
	BuildDate string `json:"build_date"`
	BuildUser string `json:"build_user"`
}

// Version returns the build information of the running binary.
func Version() Info {
	return Info{
		Version:   version,
		Branch:    branch,
		Revision:  revision,
		BuildDate: buildDate,
		BuildUser: buildUser,
	}
}

// Print writes the app name and version string to w.
func Print(w io.Writer) {
	fmt.Fprintf(w, "%s version %s\n", appName, Version().Version)
}

// PrintFull writes detailed build information to w, including the Go
// release and module list read from the executable.
func PrintFull(w io.Writer) error {
	v := Version()
	fmt.Fprintf(w, "%s - version %s\n", appName, v.Version)
	fmt.Fprintf(w, "branch: \t%s\n", v.Branch)
	fmt.Fprintf(w, "revision: \t%s\n", v.Revision)
	fmt.Fprintf(w, "build date: \t%s\n", v.BuildDate)
	fmt.Fprintf(w, "build user: \t%s\n", v.BuildUser)

	binary, err := os.Executable()
	if err != nil {
		return err
	}

	binVersion, err := goversion.ReadExe(binary)
	if err != nil {
		return fmt.Errorf("read go version from %s: %w", binary, err)
	}
	fmt.Fprintf(w, "go release: \t%s\n\n", binVersion.Release)
	fmt.Fprintln(w, binVersion.ModuleInfo)
	return nil
}

// Handler serves the build information as JSON.
func Handler() http.Handler {
	v := Version()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(v)
	})
}
