package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/metrics/export/internaldefs"
)

// ContentType is the text exposition format version served by Handler.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// PrometheusExporter renders engine counters, the login latency histogram
// and session gauges in Prometheus text exposition format.
type PrometheusExporter struct {
	source internaldefs.Source
}

// NewPrometheusExporter reads from engine.
func NewPrometheusExporter(engine *hrauth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource reads from any [internaldefs.Source].
func NewPrometheusExporterFromSource(source internaldefs.Source) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render on every request.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the exposition text. Counter and histogram families are
// omitted while metrics are disabled; session gauges are always present.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	sess := p.source.Session()

	var b strings.Builder
	b.Grow(4096)

	for _, def := range internaldefs.GaugeDefs {
		family(&b, def.Name, "gauge", def.Help)
		sample(&b, def.Name, "", strconv.FormatInt(def.Value(sess), 10))
	}

	if len(snapshot.Counters) > 0 {
		for _, def := range internaldefs.CounterDefs {
			family(&b, def.Name, "counter", def.Help)
			sample(&b, def.Name, "", strconv.FormatUint(snapshot.Counters[def.ID], 10))
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		family(&b, def.Name, "histogram", def.Help)
		for i, le := range internaldefs.HistogramBounds {
			sample(&b, def.Name+"_bucket", `le="`+le+`"`, strconv.FormatUint(cumulative[i], 10))
		}
		sample(&b, def.Name+"_count", "", strconv.FormatUint(cumulative[len(cumulative)-1], 10))
		// Latency sums are not tracked.
		sample(&b, def.Name+"_sum", "", "0")
	}

	family(&b, internaldefs.AuditDroppedName, "counter", internaldefs.AuditDroppedHelp)
	sample(&b, internaldefs.AuditDroppedName, "", strconv.FormatUint(p.source.AuditDropped(), 10))

	return b.String()
}

func family(b *strings.Builder, name, kind, help string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func sample(b *strings.Builder, name, labels, value string) {
	b.WriteString(name)
	if labels != "" {
		b.WriteByte('{')
		b.WriteString(labels)
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(value)
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(help)
}
