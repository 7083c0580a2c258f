package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	err      error
	runs     int
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&countingJob{name: "refresh", schedule: "0 0 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "refresh", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a schedule"}))
	assert.Equal(t, []string{"refresh"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("refresh"))
	assert.Error(t, s.RemoveJob("refresh"))
	assert.Empty(t, s.GetAllJobs())
}

func TestScheduler_RunJobNoRetry(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "flaky", schedule: "@hourly", err: errors.New("upstream down")}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "upstream down", result.Error)
	assert.Equal(t, 1, job.runs)

	job.err = nil
	result, err = s.RunJob("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)

	_, err = s.RunJob("missing")
	assert.Error(t, err)
}

type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Name() string     { return "slow" }
func (j *blockingJob) Schedule() string { return "@daily" }
func (j *blockingJob) Run(ctx context.Context) error {
	j.started <- struct{}{}
	<-j.release
	return nil
}

func TestScheduler_RunJobSkipsWhileRunning(t *testing.T) {
	s := New(logger.NewNop())
	job := &blockingJob{started: make(chan struct{}, 1), release: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunJob("slow")
		done <- err
	}()

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	// 첫 실행이 끝나기 전 트리거는 건너뜀
	_, err := s.RunJob("slow")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(job.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, s.GetJobStats()["slow"].TotalRuns)

	// 완료 후에는 다시 실행 가능
	_, err = s.RunJob("slow")
	assert.NoError(t, err)
	assert.Equal(t, 2, s.GetJobStats()["slow"].TotalRuns)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	_, ok := h.Last()
	assert.False(t, ok)
	assert.Zero(t, h.SuccessRate())

	for i := 0; i < maxHistory+10; i++ {
		h.Add(JobResult{Success: i%2 == 0, Error: fmt.Sprint(i)})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, maxHistory/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprint(maxHistory+9), last.Error)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&countingJob{name: "refresh", schedule: "@daily"}))
	s.Start()

	stats := s.GetJobStats()["refresh"]
	assert.NotNil(t, stats.NextRun)
	assert.Zero(t, stats.TotalRuns)
	s.Stop()
}
