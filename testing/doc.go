// Package testing provides test utilities for code built on the backend client.
//
// # Mocks
//
// The mocks subpackage provides testify-based implementations of the
// collaborators the client depends on:
//   - httpclient.CredentialProvider and httpclient.Identity
//   - httpclient.SessionStore
//
// # Fixtures
//
// The fixtures subpackage provides an httptest backend that answers with a
// configurable sequence of responses and records what it received, including
// the "Token expired" rejection used to exercise credential refresh.
//
// Import the specific subpackages you need:
//
//	import (
//		"github.com/Bidzuweb/Bidzu-Final/testing/mocks"
//		"github.com/Bidzuweb/Bidzu-Final/testing/fixtures"
//	)
package testing
