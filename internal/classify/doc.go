// Package classify turns structured analysis text into typed classifications
// and follow-up actions.
package classify
