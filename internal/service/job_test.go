package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobapi/internal/model"
	"jobapi/internal/objectkey"
	"jobapi/internal/repository"
	repoMocks "jobapi/internal/repository/mocks"
	storeMocks "jobapi/internal/storage/mocks"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func stubClock(t *testing.T) {
	t.Helper()
	origNow, origID := now, newJobID
	now = func() time.Time { return fixedNow }
	newJobID = func() string { return "11111111-2222-3333-4444-555555555555" }
	t.Cleanup(func() { now, newJobID = origNow, origID })
}

func newService(store *storeMocks.MockStorage, repo *repoMocks.MockJobRepository) JobService {
	return NewJobService(store, repo, Config{Stage: "dev", Keys: objectkey.New("uploads")})
}

func TestJobService_CreateUploadSlot(t *testing.T) {
	const jobID = "11111111-2222-3333-4444-555555555555"
	const key = "uploads/" + jobID + "_data.csv"

	tests := []struct {
		name        string
		filename    string
		contentType string
		setupMocks  func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository)
		wantErr     error
		wantOp      string
		check       func(t *testing.T, slot *UploadSlot)
	}{
		{
			name:        "happy path",
			filename:    "data.csv",
			contentType: "text/csv",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {
				mStore.On("Bucket").Return("uploads-dev")
				mRepo.On("Create", mock.Anything, &model.Job{
					ID:          jobID,
					Status:      model.JobStatusPendingUpload,
					CreatedAt:   fixedNow,
					UpdatedAt:   fixedNow,
					Filename:    "data.csv",
					ContentType: "text/csv",
					Bucket:      "uploads-dev",
					Key:         key,
				}).Return(nil)
				mStore.On("PresignPut", mock.Anything, key, "text/csv", time.Hour).
					Return("https://store/uploads-dev/"+key+"?sig=1", nil)
			},
			check: func(t *testing.T, slot *UploadSlot) {
				assert.Equal(t, jobID, slot.JobID)
				assert.Equal(t, key, slot.UploadKey)
				assert.Equal(t, "uploads-dev", slot.Bucket)
				assert.Equal(t, model.JobStatusPendingUpload, slot.Status)
				assert.Contains(t, slot.UploadURL, key)
			},
		},
		{
			name:     "content type defaults to octet-stream",
			filename: "blob",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {
				mStore.On("Bucket").Return("uploads-dev")
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
					return j.ContentType == model.DefaultContentType
				})).Return(nil)
				mStore.On("PresignPut", mock.Anything, "uploads/"+jobID+"_blob", model.DefaultContentType, time.Hour).
					Return("https://store/x", nil)
			},
		},
		{
			name:     "path separators are sanitized in the key only",
			filename: "../etc/passwd",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {
				mStore.On("Bucket").Return("uploads-dev")
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
					return j.Filename == "../etc/passwd" && j.Key == "uploads/"+jobID+"_.._etc_passwd"
				})).Return(nil)
				mStore.On("PresignPut", mock.Anything, "uploads/"+jobID+"_.._etc_passwd", mock.Anything, time.Hour).
					Return("https://store/x", nil)
			},
		},
		{
			name:       "validation error - empty filename",
			filename:   "",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {},
			wantErr:    ErrFilenameRequired,
		},
		{
			name:     "persistence failure issues no URL",
			filename: "data.csv",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {
				mStore.On("Bucket").Return("uploads-dev")
				mRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db fail"))
			},
			wantOp: OpCreateRecord,
		},
		{
			name:     "signing failure after persist",
			filename: "data.csv",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockJobRepository) {
				mStore.On("Bucket").Return("uploads-dev")
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				mStore.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return("", errors.New("sign fail"))
			},
			wantOp: OpPresignURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubClock(t)
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockJobRepository)
			svc := newService(mStore, mRepo)

			tt.setupMocks(mStore, mRepo)

			slot, err := svc.CreateUploadSlot(context.Background(), tt.filename, tt.contentType)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, slot)
			case tt.wantOp != "":
				var depErr *DependencyError
				require.ErrorAs(t, err, &depErr)
				assert.Equal(t, tt.wantOp, depErr.Op)
				assert.Nil(t, slot)
			default:
				require.NoError(t, err)
				require.NotNil(t, slot)
				if tt.check != nil {
					tt.check(t, slot)
				}
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestJobService_CreateUploadSlot_UniqueIDs(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockJobRepository)
	svc := newService(mStore, mRepo)

	mStore.On("Bucket").Return("uploads-dev")
	mRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mStore.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://store/x", nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		slot, err := svc.CreateUploadSlot(context.Background(), "data.csv", "text/csv")
		require.NoError(t, err)
		_, err = uuid.Parse(slot.JobID)
		require.NoError(t, err)
		assert.False(t, seen[slot.JobID], "duplicate job id %s", slot.JobID)
		seen[slot.JobID] = true
		assert.True(t, strings.Contains(slot.UploadKey, slot.JobID))
	}
}

func TestJobService_GetJob(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockJobRepository)
		wantErr    error
		wantOp     string
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockJobRepository) {
				mRepo.On("FindByID", mock.Anything, "valid-id").Return(&model.Job{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockJobRepository) {},
			wantErr:    ErrJobIDRequired,
		},
		{
			name: "not found is never a dependency error",
			id:   "nonexistent",
			setupMocks: func(mRepo *repoMocks.MockJobRepository) {
				mRepo.On("FindByID", mock.Anything, "nonexistent").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "store failure",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockJobRepository) {
				mRepo.On("FindByID", mock.Anything, "error-id").Return(nil, errors.New("db fail"))
			},
			wantOp: OpReadJob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockJobRepository)
			svc := newService(nil, mRepo)

			tt.setupMocks(mRepo)

			job, err := svc.GetJob(context.Background(), tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				var depErr *DependencyError
				assert.False(t, errors.As(err, &depErr))
				assert.Nil(t, job)
			case tt.wantOp != "":
				var depErr *DependencyError
				require.ErrorAs(t, err, &depErr)
				assert.Equal(t, tt.wantOp, depErr.Op)
				assert.Nil(t, job)
			default:
				assert.NoError(t, err)
				require.NotNil(t, job)
				assert.Equal(t, tt.id, job.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestJobService_Health(t *testing.T) {
	svc := newService(nil, nil)
	assert.Equal(t, HealthStatus{Status: "ok", Stage: "dev"}, svc.Health())
}

func TestJobService_Ready(t *testing.T) {
	mRepo := new(repoMocks.MockJobRepository)
	svc := newService(nil, mRepo)

	mRepo.On("Ping", mock.Anything).Return(nil).Once()
	assert.NoError(t, svc.Ready(context.Background()))

	mRepo.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	var depErr *DependencyError
	require.ErrorAs(t, svc.Ready(context.Background()), &depErr)
	assert.Equal(t, OpPingStore, depErr.Op)
}

func TestDependencyError(t *testing.T) {
	cause := errors.New("timeout")
	err := &DependencyError{Op: OpReadJob, Err: cause}
	assert.Equal(t, "read job: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestJobService_GetJob_RepeatableRead(t *testing.T) {
	stored := model.Job{
		ID:          "abc",
		Status:      model.JobStatusPendingUpload,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
		Filename:    "data.csv",
		ContentType: "text/csv",
		Bucket:      "uploads-dev",
		Key:         "uploads/abc_data.csv",
	}
	first, second := stored, stored

	mRepo := new(repoMocks.MockJobRepository)
	mRepo.On("FindByID", mock.Anything, "abc").Return(&first, nil).Once()
	mRepo.On("FindByID", mock.Anything, "abc").Return(&second, nil).Once()
	svc := newService(nil, mRepo)

	a, err := svc.GetJob(context.Background(), "abc")
	require.NoError(t, err)
	b, err := svc.GetJob(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, stored, *a)
	assert.Equal(t, *a, *b)
	mRepo.AssertExpectations(t)
}
