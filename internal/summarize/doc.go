// Package summarize condenses email content into summaries, key phrases
// and a sentiment score.
//
// Two paths exist: a deterministic extractive summarizer that needs no
// external service, and an LLM client speaking the structured analysis
// contract through an OpenRouter-compatible chat completion API.
package summarize
