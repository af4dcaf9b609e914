package commands

import "github.com/goliatone/go-techboard/components/techdash"

// Telemetry is the recorder commands report to; nil disables recording.
type Telemetry = techdash.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	return techdash.NormalizeTelemetry(t)
}
