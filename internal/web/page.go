package web

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Put/Call Signal Tracker</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; background: #111827; color: #e5e7eb; }
form { display: inline-block; margin-right: .5rem; }
input { padding: .4rem; width: 8rem; }
button { padding: .45rem 1rem; cursor: pointer; }
.alert { background: #7f1d1d; padding: .6rem 1rem; border-radius: 4px; }
.result-item { border: 1px solid #374151; border-radius: 6px; padding: .5rem 1rem; margin: .75rem 0; }
.result-item p { margin: .25rem 0; }
.Bullish { color: #10b981; }
.Bearish { color: #ef4444; }
</style>
</head>
<body>
<h1>Put/Call Signal Tracker</h1>
{{if .Alert}}<p class="alert" role="alert">{{.Alert}}</p>{{end}}
<form method="post" action="/analyze">
  <input type="text" inputmode="numeric" name="put" id="put-value" placeholder="Put" value="{{.Put}}">
  <input type="text" inputmode="numeric" name="call" id="call-value" placeholder="Call" value="{{.Call}}">
  <button type="submit" id="analyze-btn">Analyze</button>
</form>
<form method="post" action="/reset">
  <button type="submit" id="reset-btn">Reset</button>
</form>
<p>Trend: {{.Trend}}</p>
<div id="results">
{{range .Rows}}
  <div class="result-item">
    <p><strong>{{.Number}}. Time:</strong> {{.Time}}</p>
    <p><strong>Put:</strong> {{.Put}}, <strong>Call:</strong> {{.Call}} (Difference: {{.Difference}}{{if .DifferenceChange}} ({{.DifferenceChange}}){{end}})</p>
    <p><strong>Put Change:</strong> {{.PutChange}}</p>
    <p><strong>Call Change:</strong> {{.CallChange}}</p>
    <p><strong>Signal:</strong> <span class="{{.Signal}}">{{.Signal}}</span></p>
    <p><strong>Weakness:</strong> {{.Weakness}}</p>
    <p><strong>Trading Signal:</strong> {{.TradeSignal}}</p>
  </div>
{{end}}
</div>
</body>
</html>
`
