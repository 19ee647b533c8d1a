package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bidzuweb/Bidzu-Final/httpclient"
)

// MockCredentialProvider provides a testify-based mock implementation of httpclient.CredentialProvider.
//
// Example usage:
//
//	identity := &mocks.MockIdentity{}
//	identity.ExpectFreshCredential("cred-fresh", nil)
//
//	provider := &mocks.MockCredentialProvider{}
//	provider.ExpectCurrentIdentity(identity, nil)
//	provider.ExpectForceLogout(nil)
type MockCredentialProvider struct {
	mock.Mock
}

// CurrentIdentity implements httpclient.CredentialProvider
func (m *MockCredentialProvider) CurrentIdentity(ctx context.Context) (httpclient.Identity, error) {
	arguments := m.Called(ctx)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(httpclient.Identity), arguments.Error(1)
}

// ForceLogout implements httpclient.CredentialProvider
func (m *MockCredentialProvider) ForceLogout(ctx context.Context) error {
	arguments := m.Called(ctx)
	return arguments.Error(0)
}

// ExpectCurrentIdentity sets up the identity lookup. A nil identity means nobody is signed in.
func (m *MockCredentialProvider) ExpectCurrentIdentity(identity httpclient.Identity, err error) *mock.Call {
	if identity == nil {
		return m.On("CurrentIdentity", mock.Anything).Return(nil, err)
	}
	return m.On("CurrentIdentity", mock.Anything).Return(identity, err)
}

// ExpectForceLogout sets up the forced logout
func (m *MockCredentialProvider) ExpectForceLogout(err error) *mock.Call {
	return m.On("ForceLogout", mock.Anything).Return(err)
}

// MockIdentity provides a testify-based mock implementation of httpclient.Identity.
type MockIdentity struct {
	mock.Mock
}

// FreshCredential implements httpclient.Identity
func (m *MockIdentity) FreshCredential(ctx context.Context) (string, error) {
	arguments := m.Called(ctx)
	return arguments.String(0), arguments.Error(1)
}

// ExpectFreshCredential sets up the credential minted on refresh
func (m *MockIdentity) ExpectFreshCredential(credential string, err error) *mock.Call {
	return m.On("FreshCredential", mock.Anything).Return(credential, err)
}

// MockSessionStore provides a testify-based mock implementation of httpclient.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

// Clear implements httpclient.SessionStore
func (m *MockSessionStore) Clear(ctx context.Context) error {
	arguments := m.Called(ctx)
	return arguments.Error(0)
}

// Create implements httpclient.SessionStore
func (m *MockSessionStore) Create(ctx context.Context, credential string) error {
	arguments := m.Called(ctx, credential)
	return arguments.Error(0)
}

// ExpectClear sets up session removal
func (m *MockSessionStore) ExpectClear(err error) *mock.Call {
	return m.On("Clear", mock.Anything).Return(err)
}

// ExpectCreate sets up session creation for credential
func (m *MockSessionStore) ExpectCreate(credential string, err error) *mock.Call {
	return m.On("Create", mock.Anything, credential).Return(err)
}

var (
	_ httpclient.CredentialProvider = (*MockCredentialProvider)(nil)
	_ httpclient.Identity           = (*MockIdentity)(nil)
	_ httpclient.SessionStore       = (*MockSessionStore)(nil)
)
