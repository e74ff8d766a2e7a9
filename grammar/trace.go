package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'larl.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("larl.grammar")
}
