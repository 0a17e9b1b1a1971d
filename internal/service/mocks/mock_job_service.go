package mocks

import (
	"context"

	"jobapi/internal/model"
	"jobapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) CreateUploadSlot(ctx context.Context, filename, contentType string) (*service.UploadSlot, error) {
	args := m.Called(ctx, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadSlot), args.Error(1)
}

func (m *MockJobService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobService) Health() service.HealthStatus {
	args := m.Called()
	return args.Get(0).(service.HealthStatus)
}

func (m *MockJobService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
