package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Ingest(ctx context.Context, documentPath string) (string, error) {
	args := m.Called(ctx, documentPath)
	return args.String(0), args.Error(1)
}
