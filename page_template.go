package main

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Read statistics dashboard</title>
<style>
body { font-family: sans-serif; margin: 20px; }
.warning { background: #fff3cd; border: 1px solid #ffc107; padding: 8px; margin-bottom: 10px; }
.notice { background: #d1e7dd; border: 1px solid #198754; padding: 8px; margin-bottom: 10px; }
.controls form { display: inline-block; margin-right: 16px; vertical-align: top; }
.swatch { display: inline-block; width: 10px; height: 10px; }
table { border-collapse: collapse; font-size: 12px; }
td, th { border: 1px solid #ccc; padding: 2px 6px; }
iframe { border: none; width: 100%; height: 2200px; }
</style>
</head>
<body>
<h1>Read statistics dashboard</h1>
{{if .Warning}}<div class="warning">{{.Warning}}</div>{{end}}
{{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}

<div class="controls">
<form method="post" action="/samples">
	<input type="hidden" name="id" value="{{.ID}}">
	{{range .Samples}}
	<label><input type="checkbox" name="sample" value="{{.Name}}"{{if .Selected}} checked{{end}}>
	<span class="swatch" style="background: {{.Color}}"></span> {{.Name}}</label><br>
	{{end}}
	<button type="submit">Apply selection</button>
</form>
<form method="post" action="/select-all"><input type="hidden" name="id" value="{{.ID}}"><button type="submit">Select All</button></form>
<form method="post" action="/deselect-all"><input type="hidden" name="id" value="{{.ID}}"><button type="submit">Deselect All</button></form>

<form method="post" action="/thresholds">
	<input type="hidden" name="id" value="{{.ID}}">
	Mid <input type="number" name="mid" value="{{.Thresholds.Mid}}">
	Long <input type="number" name="long" value="{{.Thresholds.Long}}">
	<button type="submit">Set thresholds</button>
</form>

<form method="post" action="/brush">
	<input type="hidden" name="id" value="{{.ID}}">
	Read length <input name="x_min" size="6" value="{{with .Brush}}{{.XMin}}{{end}}"> - <input name="x_max" size="6" value="{{with .Brush}}{{.XMax}}{{end}}">
	QScore <input name="y_min" size="4" value="{{with .Brush}}{{.YMin}}{{end}}"> - <input name="y_max" size="4" value="{{with .Brush}}{{.YMax}}{{end}}">
	<button type="submit">Zoom</button>
</form>
<form method="post" action="/brush"><input type="hidden" name="id" value="{{.ID}}"><button type="submit">Reset zoom</button></form>
</div>

<p>{{.UnbrushedCount}} reads selected, {{.BrushedCount}} in zoom. Facets:{{range .Facets}} {{.Title}}{{end}}</p>

<iframe src="/charts?id={{.ID}}&g={{.Generation}}"></iframe>

<h2>Summary</h2>
{{.Summary}}
<img src="/plot.png?id={{.ID}}&name=bucket-counts&g={{.Generation}}" alt="Reads per length bucket" width="600">

<h2>Overview</h2>
<form method="get" action="/">
	<input type="hidden" name="id" value="{{.ID}}">
	Filter <input name="filter" size="40" value="{{.Filter}}" placeholder="read_length >= 1000; sample_name = A">
	Sort <input name="sort" size="30" value="{{.Sort}}" placeholder="mean_quality:desc,read_id">
	<button type="submit">Apply</button>
</form>
{{.Overview}}
<form method="post" action="/export/read-ids">
	<input type="hidden" name="id" value="{{.ID}}">
	<input type="hidden" name="filter" value="{{.Filter}}">
	<input type="hidden" name="sort" value="{{.Sort}}">
	<input name="path" size="40" placeholder="path/to/read_ids.txt">
	<button type="submit">Export Read IDs</button>
</form>

<h2>Zoomed reads</h2>
{{.Detail}}

<h2>Export</h2>
<form method="post" action="/export/plots">
	<input type="hidden" name="id" value="{{.ID}}">
	<input name="dir" size="40" placeholder="directory for plots">
	<button type="submit">Export Plots</button>
</form>
<form method="post" action="/close">
	<input type="hidden" name="id" value="{{.ID}}">
	<button type="submit">Close Dashboard</button>
</form>
</body>
</html>
`
