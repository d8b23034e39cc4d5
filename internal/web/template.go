package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/telemetry-sim/internal/status"
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
	"reading": func(valid bool, v float64) string {
		if !valid {
			return "--"
		}
		return fmt.Sprintf("%.2f", v)
	},
	"f2": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Telemetry Sim</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.fault { color: red; font-weight: bold; }
.running { color: green; }
.paused { color: orange; }
.stopped, .idle { color: #888; }
button { font-family: monospace; margin-right: 6px; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Telemetry Sim<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<p>
<button onclick="ctl('start')">Start</button>
<button onclick="ctl('pause')">Pause</button>
<button onclick="ctl('resume')">Resume</button>
<button onclick="ctl('stop')">Stop</button>
</p>

<h2>Session</h2>
<table>
<tr><th>State</th><td id="state" class="{{lower .State}}">{{.State}}</td></tr>
<tr><th>Tick</th><td id="tick">{{.CurrentTick}}</td></tr>
<tr><th>Status</th><td id="tick-status" class="{{if eq .TickStatus "OK"}}ok{{else}}fault{{end}}">{{.TickStatus}}</td></tr>
<tr><th>Health Score</th><td id="health">{{.HealthScore}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<h2>Readings</h2>
<table>
<tr><th>Temp A (&deg;C)</th><td id="temp-a">{{reading .Frame.TempA.Valid .Frame.TempA.Value}}</td></tr>
<tr><th>Temp B (&deg;C)</th><td id="temp-b">{{reading .Frame.TempB.Valid .Frame.TempB.Value}}</td></tr>
<tr><th>Pressure (kPa)</th><td id="pressure">{{reading .Frame.Pressure.Valid .Frame.Pressure.Value}}</td></tr>
<tr><th>Trusted Temp</th><td id="trusted">{{if .Verdict.HasTrusted}}{{f2 .Verdict.TrustedValue}}{{else}}--{{end}}</td></tr>
<tr><th>Disagreement</th><td id="disagreement">{{f2 .Verdict.Disagreement}}</td></tr>
<tr><th>Temp Trend</th><td id="temp-trend">{{.TempTrend.Classification}}</td></tr>
<tr><th>Pressure Trend</th><td id="pressure-trend">{{.PressureTrend.Classification}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Flagged</th><td>{{.Counts.FlaggedTicks}}</td></tr>
<tr><th>Faults Scheduled</th><td>{{.Counts.FaultsScheduled}}</td></tr>
<tr><th>Trend Transitions</th><td>{{.Counts.TrendTransitions}}</td></tr>
</table>

<h2>Config</h2>
<table>
<tr><th>Tick Period</th><td>{{.Config.TickPeriodMs}}ms</td></tr>
<tr><th>Noise Seed</th><td>{{.Config.NoiseSeed}}</td></tr>
<tr><th>Redundancy Threshold</th><td>{{.Config.RedundancyThreshold}}</td></tr>
<tr><th>Trend Window</th><td>{{.Config.TrendWindowSize}}</td></tr>
<tr><th>Trend Epsilon</th><td>{{.Config.TrendEpsilon}}</td></tr>
<tr><th>MQTT Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/log.json">Log</a> &middot; <a href="/summary.json">Summary</a></p>

<script>
function ctl(op) {
  fetch("/control/" + op, { method: "POST" }).then(function() { location.reload(); });
}

(function() {
  var dot = document.getElementById("live-dot");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/live");

  function set(id, text) { document.getElementById(id).textContent = text; }

  ws.onopen = function() { dot.className = "live-dot ok"; dot.title = "live"; };
  ws.onclose = function() { dot.className = "live-dot err"; dot.title = "closed"; };
  ws.onerror = function() { dot.className = "live-dot err"; dot.title = "error"; };

  ws.onmessage = function(msg) {
    try {
      var e = JSON.parse(msg.data);
      if (e.kind !== "TICK") return;
      var rec = e.tick;
      set("tick", rec.tick);
      set("tick-status", rec.status);
      set("temp-a", rec.frame.temp_a.valid ? rec.frame.temp_a.value.toFixed(2) : "--");
      set("temp-b", rec.frame.temp_b.valid ? rec.frame.temp_b.value.toFixed(2) : "--");
      set("pressure", rec.frame.pressure.valid ? rec.frame.pressure.value.toFixed(2) : "--");
      set("trusted", rec.verdict.has_trusted ? rec.verdict.trusted_value.toFixed(2) : "--");
      set("disagreement", rec.verdict.disagreement.toFixed(2));
      set("temp-trend", rec.temp_trend.classification);
      set("pressure-trend", rec.pressure_trend.classification);
    } catch (err) {}
  };
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}

// statusJSON formats the snapshot for the JSON endpoint.
func statusJSON(snap status.Snapshot) []byte {
	return status.FormatJSON(snap)
}
