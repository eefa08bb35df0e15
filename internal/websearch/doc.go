// Package websearch answers search queries against the DuckDuckGo HTML
// endpoint and formats the hits for LLM answer synthesis.
package websearch
