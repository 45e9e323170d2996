package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yongseopkim/workrecap/model"
)

type fakeMirror struct {
	name       string
	statsErr   error
	checkErr   error
	statsCalls int
	checkCalls int
}

func (f *fakeMirror) Name() string { return f.name }

func (f *fakeMirror) MirrorDailyStats(ctx context.Context, date string, stats model.DailyStats) error {
	f.statsCalls++
	return f.statsErr
}

func (f *fakeMirror) MirrorCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	f.checkCalls++
	return f.checkErr
}

func TestFanOut_CallsEveryMirror(t *testing.T) {
	a := &fakeMirror{name: "a"}
	b := &fakeMirror{name: "b"}

	FanOut(context.Background(), []Mirror{a, b}, nil, func(m Mirror) error {
		return m.MirrorCheckpoint(context.Background(), model.Checkpoint{})
	})

	assert.Equal(t, 1, a.checkCalls)
	assert.Equal(t, 1, b.checkCalls)
}

func TestFanOut_RoutesFailureToCallbackWithoutStopping(t *testing.T) {
	a := &fakeMirror{name: "a", checkErr: errors.New("connection refused")}
	b := &fakeMirror{name: "b"}

	var failed []string
	FanOut(context.Background(), []Mirror{a, b}, func(backend string, err error) {
		failed = append(failed, backend)
	}, func(m Mirror) error {
		return m.MirrorCheckpoint(context.Background(), model.Checkpoint{})
	})

	assert.Equal(t, []string{"a"}, failed)
	assert.Equal(t, 1, b.checkCalls, "a failure in one mirror must not prevent the others from running")
}

func TestFanOut_SkipsNilMirrors(t *testing.T) {
	var calls int
	FanOut(context.Background(), []Mirror{nil}, nil, func(m Mirror) error {
		calls++
		return nil
	})
	assert.Equal(t, 0, calls)
}
