package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/booking"
	"github.com/modubooking/go-booking-client/booking/bookingfakes"
)

func lotteryBackend() *bookingfakes.FakeBackend {
	backend := bookingfakes.NewFakeBackend()
	backend.ScheduleSets[7] = []api.Schedule{
		{ID: 70, PerformanceID: 7, Round: 1},
		{ID: 71, PerformanceID: 7, Round: 2},
	}
	return backend
}

func advanceToSubmit(t *testing.T, flow *booking.LotteryFlow) {
	t.Helper()
	require.NoError(t, flow.ChooseSchedule(70))
	require.NoError(t, flow.ChooseGrade("VIP", 2))
	require.NoError(t, flow.Acknowledge())
}

func TestLotteryFlow_HappyPath(t *testing.T) {
	backend := lotteryBackend()
	flow, err := booking.NewLotteryFlow(backend, 7, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	schedules, err := flow.LoadSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	advanceToSubmit(t, flow)
	entry, err := flow.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, api.LotteryStatusApplied, entry.Status)
	require.Equal(t, "VIP", entry.Grade)
	require.Equal(t, 2, entry.Quantity)
	require.Equal(t, booking.LotteryStepComplete, flow.Step())

	got, done := flow.Entry()
	require.True(t, done)
	require.Equal(t, entry.ID, got.ID)
}

func TestLotteryFlow_StepGating(t *testing.T) {
	flow, err := booking.NewLotteryFlow(lotteryBackend(), 7, zerolog.Nop())
	require.NoError(t, err)

	require.ErrorIs(t, flow.ChooseGrade("VIP", 1), booking.ErrWrongStep)
	require.ErrorIs(t, flow.Acknowledge(), booking.ErrWrongStep)
	_, submitErr := flow.Submit(context.Background())
	require.ErrorIs(t, submitErr, booking.ErrWrongStep)

	// Schedule is required before the grade step.
	require.Error(t, flow.ChooseSchedule(0))
	require.NoError(t, flow.ChooseSchedule(70))
	require.Equal(t, booking.LotteryStepGrade, flow.Step())
}

func TestLotteryFlow_GradeAndQuantityValidation(t *testing.T) {
	flow, err := booking.NewLotteryFlow(lotteryBackend(), 7, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, flow.ChooseSchedule(70))

	// Empty grade is rejected.
	require.Error(t, flow.ChooseGrade("", 1))
	// Negative quantity is rejected.
	require.Error(t, flow.ChooseGrade("VIP", -1))
	// Zero keeps the default of 1.
	require.NoError(t, flow.ChooseGrade("VIP", 0))
	require.NoError(t, flow.Acknowledge())

	entry, err := flow.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, entry.Quantity)
}

func TestLotteryFlow_DoubleClickSubmitsOnce(t *testing.T) {
	backend := lotteryBackend()
	backend.Block = make(chan struct{})
	flow, err := booking.NewLotteryFlow(backend, 7, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()
	advanceToSubmit(t, flow)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = flow.Submit(ctx)
	}()

	require.Eventually(t, flow.Submitting, time.Second, time.Millisecond)
	_, err = flow.Submit(ctx)
	require.ErrorIs(t, err, booking.ErrSubmissionInFlight)

	close(backend.Block)
	wg.Wait()
	require.NoError(t, firstErr)

	// Exactly one POST reached the entry-creation endpoint, and the flow is
	// now read-only.
	require.Equal(t, 1, backend.CreateEntryCalls)
	_, err = flow.Submit(ctx)
	require.ErrorIs(t, err, booking.ErrWrongStep)
	require.Equal(t, 1, backend.CreateEntryCalls)
}

func TestLotteryFlow_SubmitFailureAllowsRetry(t *testing.T) {
	backend := lotteryBackend()
	backend.CreateEntryErr = &api.Error{Kind: api.KindServer, Status: 500, Message: "잠시 후 다시 시도해주세요"}
	flow, err := booking.NewLotteryFlow(backend, 7, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()
	advanceToSubmit(t, flow)

	_, err = flow.Submit(ctx)
	require.Error(t, err)
	require.False(t, flow.Submitting())

	backend.CreateEntryErr = nil
	_, err = flow.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, backend.CreateEntryCalls)
}

func TestPaymentOffered_OnlyForWin(t *testing.T) {
	statuses := map[string]bool{
		api.LotteryStatusApplied:   false,
		api.LotteryStatusWin:       true,
		api.LotteryStatusLose:      false,
		api.LotteryStatusCancelled: false,
	}
	for status, offered := range statuses {
		require.Equal(t, offered, booking.PaymentOffered(api.LotteryEntry{Status: status}), status)
	}
}
