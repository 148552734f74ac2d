package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"leo/internal/bytecode"
	"leo/internal/version"
)

// buildReport is what `leo version` prints. Optional fields stay empty
// unless asked for.
type buildReport struct {
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	ImageSchema uint16 `json:"image_schema"`
	Go          string `json:"go,omitempty"`
	Commit      string `json:"git_commit,omitempty"`
	Message     string `json:"git_message,omitempty"`
	Built       string `json:"build_date,omitempty"`
}

var versionFlags struct {
	format  string
	hash    bool
	message bool
	date    bool
	full    bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show leo build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r := newBuildReport()
		switch strings.ToLower(versionFlags.format) {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		case "pretty", "":
			r.writePretty(cmd.OutOrStdout())
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFlags.format)
		}
	},
}

func init() {
	f := versionCmd.Flags()
	f.BoolVar(&versionFlags.hash, "hash", false, "include git commit hash")
	f.BoolVar(&versionFlags.message, "message", false, "include git commit message")
	f.BoolVar(&versionFlags.date, "date", false, "include build timestamp")
	f.BoolVar(&versionFlags.full, "full", false, "show all build metadata")
	f.StringVar(&versionFlags.format, "format", "pretty", "output format (pretty|json)")
}

func newBuildReport() buildReport {
	r := buildReport{
		Tool:        "leo",
		Version:     orDefault(version.Version, "dev"),
		ImageSchema: bytecode.ImageSchema,
	}
	full := versionFlags.full
	if full {
		r.Go = runtime.Version()
	}
	if full || versionFlags.hash {
		r.Commit = orDefault(version.GitCommit, "unknown")
	}
	if full || versionFlags.message {
		r.Message = orDefault(version.GitMessage, "unknown")
	}
	if full || versionFlags.date {
		r.Built = orDefault(version.BuildDate, "unknown")
	}
	return r
}

func (r buildReport) writePretty(out io.Writer) {
	fmt.Fprintf(out, "%s %s (image schema %d)\n", r.Tool, version.Colored(r.Version), r.ImageSchema)
	for _, row := range [][2]string{
		{"go", r.Go},
		{"commit", r.Commit},
		{"message", r.Message},
		{"built", r.Built},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", row[0]+":", row[1])
		}
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
