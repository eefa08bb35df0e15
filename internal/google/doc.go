// Package google provides OAuth2 authentication and token management for
// Google APIs.
//
// Tokens are cached on disk under the user cache directory; client
// credentials are read from the environment. The TokenProvider interface
// allows test fakes to be plugged in where a real token is unavailable.
package google
