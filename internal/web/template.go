package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/labkit/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"modeOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"modeClass": func(s string) string {
		switch s {
		case "ALARM", "FAULT":
			return "alert"
		case "ELEVATED":
			return "warn"
		case "":
			return "unknown"
		}
		return "ok"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>labkit: {{.Exercise}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre.lcd { background: #123; color: #8cf; padding: 8px; width: 17ch; }
.ok { color: green; font-weight: bold; }
.warn { color: orange; font-weight: bold; }
.alert { color: red; font-weight: bold; }
.unknown { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>labkit: {{.Exercise}}</h1>

<h2>State</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{modeClass .Mode}}">{{modeOrUnknown .Mode}}</td></tr>
{{range .Readings}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
{{if .HasDisplay}}
<h2>Display</h2>
<pre class="lcd">{{index .Lines 0}}
{{index .Lines 1}}</pre>
{{end}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Events</th><td>{{.Events}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Faults</th><td>{{.Faults}}{{if .LastFault}} (last: {{.LastFault}}){{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		HasDisplay bool
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		HasDisplay: snap.Lines != [2]string{},
	}
	indexTmpl.Execute(w, data)
}
