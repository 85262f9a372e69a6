// Package report renders the outcome of a run, both as an HTML page written
// next to the work directory and as a colored terminal summary.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/kongove/scylla-artifact-tests/database"
)

const runTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Artifact run {{.ID}} - {{.Distro}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
.pass { color: #2a2; }
.fail, .error { color: #c22; }
</style>
</head>
<body>
<h1>Artifact run {{.ID}}</h1>
<p>Artifact: <code>{{.Artifact}}</code></p>
<p>Distro: {{.Distro}} &middot; Mode: {{.Mode}} &middot; Status: <span class="{{.Status}}">{{.Status}}</span></p>
<p>Started: {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}{{if not .FinishedAt.IsZero}} &middot; Finished: {{.FinishedAt.Format "2006-01-02 15:04:05 MST"}}{{end}}</p>
<table>
<tr><th>Check</th><th>Status</th><th>Duration</th><th>Detail</th></tr>
{{range .Results}}<tr><td>{{.Name}}</td><td class="{{.Status}}">{{.Status}}</td><td>{{.Duration}}</td><td>{{.Detail}}</td></tr>
{{end}}</table>
</body>
</html>
`

var tmpl = template.Must(template.New("run").Parse(runTemplate))

// WriteHTML renders the run to an HTML file at path.
func WriteHTML(path string, run database.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: could not create report file: %v", err)
	}
	defer f.Close()

	return Render(f, run)
}

// Render writes the HTML report for a run to w.
func Render(w io.Writer, run database.Run) error {
	return tmpl.Execute(w, run)
}

// PrintSummary prints a colored pass/fail breakdown of the run's results to
// the terminal.
func PrintSummary(run database.Run) {
	var passed, failed int
	for _, r := range run.Results {
		if r.Status == database.StatusPass {
			passed++
		} else {
			failed++
		}
	}

	for _, r := range run.Results {
		status := color.GreenString("PASS")
		if r.Status != database.StatusPass {
			status = color.RedString("FAIL")
		}
		fmt.Printf("%s %-32s %s\n", status, r.Name, r.Detail)
	}

	if failed == 0 {
		fmt.Printf("%s All %d checks passed on %s\n", color.GreenString("Success!"), passed, run.Distro.String())
	} else {
		fmt.Printf("%s %d of %d checks failed on %s\n", color.RedString("FAILURE:"), failed, passed+failed, run.Distro.String())
	}
}
