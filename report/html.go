package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"

	"geneflow_go/pipeline"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"f4": func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"opt": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.4f", *v)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
	<title>GeneFlow Report</title>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9; }
		h1 { color: #333; }
		.warning { color: #a60; }
		table { border-collapse: collapse; margin-top: 20px; }
		th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
		th { background-color: #eee; }
	</style>
</head>
<body>
	<h1>GeneFlow Report</h1>
	<p>Run {{.Result.ID}}: {{.Result.Message}}</p>
	{{range .Result.Warnings}}<p class="warning">{{.}}</p>{{end}}

	<h2>Genetic Data</h2>
	<table>
		<tr><th>Metric</th><th>Value</th></tr>
		<tr><td>Sequences</td><td>{{.Result.GeneticData.Count}}</td></tr>
		<tr><td>Average Length</td><td>{{f4 .Result.GeneticData.AvgLength}}</td></tr>
		<tr><td>Average GC Fraction</td><td>{{f4 .Result.GeneticData.AvgGCFraction}}</td></tr>
		<tr><td>Min Length</td><td>{{.Result.GeneticData.MinLength}}</td></tr>
		<tr><td>Max Length</td><td>{{.Result.GeneticData.MaxLength}}</td></tr>
	</table>

	<h2>Environmental Summary</h2>
	<table>
		<tr><th>Column</th><th>Count</th><th>Mean</th><th>Std</th><th>Min</th><th>25%</th><th>50%</th><th>75%</th><th>Max</th></tr>
		{{range .Result.EnvironmentSummary}}<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{f4 .Mean}}</td><td>{{opt .Std}}</td><td>{{f4 .Min}}</td><td>{{f4 .P25}}</td><td>{{f4 .P50}}</td><td>{{f4 .P75}}</td><td>{{f4 .Max}}</td></tr>
		{{end}}
	</table>
	{{with .Result.ExcludedColumns}}<p>Excluded columns: {{range $i, $c := .}}{{if $i}}, {{end}}{{$c}}{{end}}</p>{{end}}

	<h2>Correlation Matrix</h2>
	<table>
		<tr><th></th>{{range .Result.Correlation.Columns}}<th>{{.}}</th>{{end}}</tr>
		{{range $i, $name := .Result.Correlation.Columns}}<tr><th>{{$name}}</th>{{range index $.Result.Correlation.Values $i}}<td>{{f4 .}}</td>{{end}}</tr>
		{{end}}
	</table>

	<h2>Allele Frequency Trajectory</h2>
	<div>{{.Trajectory}}</div>

	{{with .Heatmap}}<h2>Trait Distribution Heatmap</h2>
	<img alt="Trait Distribution Heatmap" src="{{.}}">{{end}}
</body>
</html>
`))

type htmlData struct {
	Result     *pipeline.Result
	Trajectory template.HTML
	Heatmap    template.URL
}

// WriteHTMLReport writes res to filename + ".html".
func WriteHTMLReport(filename string, res *pipeline.Result) (err error) {
	f, err := os.Create(filename + ".html")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteHTML(f, res)
}

// WriteHTML renders res as a standalone HTML page with the trajectory plot and
// the heatmap embedded inline.
func WriteHTML(w io.Writer, res *pipeline.Result) error {
	svg, err := TrajectorySVG(res.Projections)
	if err != nil {
		return fmt.Errorf("trajectory plot: %w", err)
	}

	data := htmlData{
		Result:     res,
		Trajectory: template.HTML(svg),
	}
	if res.Heatmap != nil && len(res.Heatmap.Data) > 0 {
		data.Heatmap = template.URL("data:" + res.Heatmap.MediaType + ";base64," +
			base64.StdEncoding.EncodeToString(res.Heatmap.Data))
	}

	if err := htmlReport.Execute(w, data); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}
