package poller_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.trai.ch/cask/internal/engine/poller"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func request(status domain.RequestStatus, versionID string) domain.BuildRequest {
	return domain.BuildRequest{ID: "08c1", Status: status, VersionID: versionID}
}

func TestPoller_Await_Success(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)

		gomock.InOrder(
			svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusQueued, ""), nil),
			svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusInProgress, ""), nil),
			svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusSuccess, "05i1"), nil),
		)

		start := time.Now()
		versionID, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{
			Interval: time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "05i1", versionID)
		assert.Equal(t, 2*time.Second, time.Since(start))
	})
}

func TestPoller_Await_AlreadyFinished(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusSuccess, "05i1"), nil)

		start := time.Now()
		versionID, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{})
		require.NoError(t, err)
		assert.Equal(t, "05i1", versionID)
		assert.Zero(t, time.Since(start))
	})
}

func TestPoller_Await_ErrorAggregatesMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBuildService(ctrl)

	svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusError, ""), nil)
	svc.EXPECT().GetBuildRequestErrors(gomock.Any(), "08c1").Return([]string{
		"ApexClass Foo: missing semicolon",
		"CustomObject Bar__c: invalid field",
	}, nil)

	_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)

	var failure *domain.BuildFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "08c1", failure.RequestID)
	assert.Contains(t, err.Error(), "ApexClass Foo: missing semicolon")
	assert.Contains(t, err.Error(), "CustomObject Bar__c: invalid field")
}

func TestPoller_Await_Backoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)

		var polls []time.Duration
		start := time.Now()
		calls := 0
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").DoAndReturn(
			func(context.Context, string) (domain.BuildRequest, error) {
				polls = append(polls, time.Since(start))
				calls++
				if calls == 8 {
					return request(domain.StatusSuccess, "05i1"), nil
				}
				return request(domain.StatusInProgress, ""), nil
			}).Times(8)

		_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{
			Interval:    time.Second,
			MaxInterval: 2 * time.Second,
		})
		require.NoError(t, err)

		// 1s, 1s, then 2s capped from the third poll on.
		want := []time.Duration{0, 1, 2, 4, 6, 8, 10, 12}
		for i := range want {
			want[i] *= time.Second
		}
		assert.Equal(t, want, polls)
	})
}

func TestPoller_Await_MaxIntervalBelowInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)

		var polls []time.Duration
		start := time.Now()
		calls := 0
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").DoAndReturn(
			func(context.Context, string) (domain.BuildRequest, error) {
				polls = append(polls, time.Since(start))
				calls++
				if calls == 6 {
					return request(domain.StatusSuccess, "05i1"), nil
				}
				return request(domain.StatusInProgress, ""), nil
			}).Times(6)

		_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{
			Interval:    10 * time.Second,
			MaxInterval: 5 * time.Second,
		})
		require.NoError(t, err)

		// The wait is clamped to Interval and never grows.
		want := []time.Duration{0, 10, 20, 30, 40, 50}
		for i := range want {
			want[i] *= time.Second
		}
		assert.Equal(t, want, polls)
	})
}

func TestPoller_Await_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request(domain.StatusQueued, ""), nil).AnyTimes()

		_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{
			Interval: time.Second,
			Timeout:  5 * time.Second,
		})
		require.ErrorIs(t, err, domain.ErrPollTimeout)
	})
}

func TestPoller_Await_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").DoAndReturn(
			func(context.Context, string) (domain.BuildRequest, error) {
				cancel()
				return request(domain.StatusQueued, ""), nil
			})

		_, err := poller.New(svc, quietLogger(ctrl)).Await(ctx, "08c1", poller.Options{Interval: time.Second})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPoller_Await_UnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBuildService(ctrl)
	svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(request("Paused", ""), nil)

	_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{})
	require.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestPoller_Await_QueryFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBuildService(ctrl)
	boom := errors.New("connection reset")
	svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").Return(domain.BuildRequest{}, boom)

	_, err := poller.New(svc, quietLogger(ctrl)).Await(context.Background(), "08c1", poller.Options{})
	require.ErrorIs(t, err, boom)
}

func TestPoller_Await_StateIsPerRequest(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockBuildService(ctrl)
		p := poller.New(svc, quietLogger(ctrl))
		opts := poller.Options{Interval: time.Second, MaxInterval: 10 * time.Second}

		// Six polls on the first request grow its interval to 3s.
		first := 0
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c1").DoAndReturn(
			func(context.Context, string) (domain.BuildRequest, error) {
				first++
				if first == 7 {
					return request(domain.StatusSuccess, "05i1"), nil
				}
				return request(domain.StatusQueued, ""), nil
			}).Times(7)
		_, err := p.Await(context.Background(), "08c1", opts)
		require.NoError(t, err)

		// The second request starts again at the base interval.
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c2").Return(request(domain.StatusQueued, ""), nil)
		svc.EXPECT().GetBuildRequest(gomock.Any(), "08c2").Return(request(domain.StatusSuccess, "05i2"), nil)
		start := time.Now()
		versionID, err := p.Await(context.Background(), "08c2", opts)
		require.NoError(t, err)
		assert.Equal(t, "05i2", versionID)
		assert.Equal(t, time.Second, time.Since(start))
	})
}
