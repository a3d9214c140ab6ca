package ghclient

import (
	"context"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/mock"
)

// MockHostingClient is a mock implementation of HostingClient for testing.
type MockHostingClient struct {
	mock.Mock
}

var _ contract.HostingClient = &MockHostingClient{} // Compile-time check

// ListOrgRepositories implements the HostingClient interface.
func (m *MockHostingClient) ListOrgRepositories(ctx context.Context, org string, maxRepos int) ([]schema.RepositoryRecord, schema.Quota, error) {
	args := m.Called(ctx, org, maxRepos)
	records, _ := args.Get(0).([]schema.RepositoryRecord)
	return records, args.Get(1).(schema.Quota), args.Error(2)
}

// ListContributors implements the HostingClient interface.
func (m *MockHostingClient) ListContributors(ctx context.Context, fullName string, maxContributors int) ([]schema.ContributorRecord, int, schema.Quota, error) {
	args := m.Called(ctx, fullName, maxContributors)
	records, _ := args.Get(0).([]schema.ContributorRecord)
	return records, args.Int(1), args.Get(2).(schema.Quota), args.Error(3)
}

// RateLimit implements the HostingClient interface.
func (m *MockHostingClient) RateLimit(ctx context.Context) (schema.Quota, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.Quota), args.Error(1)
}
