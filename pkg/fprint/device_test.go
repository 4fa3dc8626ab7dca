package fprint_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbiometrics/libfprint-go/pkg/fprint"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/virtualdev"
)

// newTestContext builds a context over a single virtual scanner and
// returns the scanner so tests can script its scan queue.
func newTestContext(t *testing.T, specs ...virtualdev.DeviceSpec) (*fprint.Context, *virtualdev.Scanner, *fprint.Device) {
	t.Helper()
	drv, err := virtualdev.New(specs...)
	require.NoError(t, err)
	ctx, err := fprint.New(fprint.WithDriver(drv))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	devs, err := ctx.Devices()
	require.NoError(t, err)
	require.NotEmpty(t, devs)
	return ctx, drv.Scanners()[0], devs[0]
}

func openDevice(t *testing.T, dev *fprint.Device) {
	t.Helper()
	require.NoError(t, dev.Open(context.Background()))
}

func newTemplate(t *testing.T, dev *fprint.Device, username string, finger fprint.Finger) *fprint.Print {
	t.Helper()
	tmpl, err := dev.NewPrint()
	require.NoError(t, err)
	require.NoError(t, tmpl.SetUsername(username))
	require.NoError(t, tmpl.SetFinger(finger))
	return tmpl
}

func TestDeviceMetadata(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{
		ID:           "virtual/meta",
		Name:         "Test Scanner",
		EnrollStages: 3,
		ScanType:     "swipe",
	})

	assert.Equal(t, "Test Scanner", dev.Name())
	assert.Equal(t, "virtual", dev.DriverName())
	assert.Equal(t, "virtual/meta", dev.ID())
	assert.Equal(t, fprint.ScanTypeSwipe, dev.ScanType())
	assert.Equal(t, 3, dev.NrEnrollStages())
	assert.True(t, dev.HasFeature(fprint.FeatureVerify))
	assert.True(t, dev.HasFeature(fprint.FeatureIdentify|fprint.FeatureCapture))
	assert.False(t, dev.HasFeature(fprint.FeatureStorage))
}

func TestDeviceOpenClose(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	ctx := context.Background()

	require.False(t, dev.IsOpen())
	require.NoError(t, dev.Open(ctx))
	require.True(t, dev.IsOpen())

	err := dev.Open(ctx)
	require.Error(t, err)
	assert.Equal(t, fprint.KindBusy, fprint.KindOf(err))
	assert.ErrorIs(t, err, fprint.ErrDeviceAlreadyOpen)
	assert.True(t, dev.IsOpen())

	require.NoError(t, dev.Close(ctx))
	require.False(t, dev.IsOpen())
	assert.ErrorIs(t, dev.Close(ctx), fprint.ErrDeviceNotOpen)
}

func TestOperationsRequireOpenDevice(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	ctx := context.Background()

	tmpl, err := dev.NewPrint()
	require.NoError(t, err)

	_, err = dev.Enroll(ctx, tmpl, nil)
	assert.ErrorIs(t, err, fprint.ErrDeviceNotOpen)
	_, _, err = dev.Verify(ctx, tmpl, nil)
	assert.ErrorIs(t, err, fprint.ErrDeviceNotOpen)
	_, _, err = dev.Identify(ctx, []*fprint.Print{tmpl}, nil)
	assert.ErrorIs(t, err, fprint.ErrDeviceNotOpen)
	_, err = dev.CaptureImage(ctx, false)
	assert.ErrorIs(t, err, fprint.ErrDeviceNotOpen)
}

func TestEnrollProgress(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{EnrollStages: 5})
	openDevice(t, dev)

	tmpl := newTemplate(t, dev, "alice", fprint.FingerRightIndex)

	var completed []int
	print, err := dev.Enroll(context.Background(), tmpl, func(d *fprint.Device, stages int, _ *fprint.Print, err error) {
		assert.Same(t, dev, d)
		assert.NoError(t, err)
		completed = append(completed, stages)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, completed)
	assert.Equal(t, "alice", print.Username())
	assert.Equal(t, fprint.FingerRightIndex, print.Finger())
	assert.Equal(t, "virtual", print.DriverName())
	assert.Equal(t, dev.ID(), print.DeviceID())
	assert.False(t, print.EnrollDate().IsZero())
}

func TestEnrollNilTemplate(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	openDevice(t, dev)

	_, err := dev.Enroll(context.Background(), nil, nil)
	assert.Equal(t, fprint.KindInvalidArgument, fprint.KindOf(err))
}

func TestEnrollRetryStage(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{
		EnrollStages: 3,
		RetryStages:  []int{2},
	})
	openDevice(t, dev)

	tmpl := newTemplate(t, dev, "bob", fprint.FingerLeftThumb)

	type event struct {
		completed int
		retry     bool
	}
	var events []event
	_, err := dev.Enroll(context.Background(), tmpl, func(_ *fprint.Device, stages int, _ *fprint.Print, err error) {
		var retry *fprint.RetryError
		if err != nil {
			require.ErrorAs(t, err, &retry)
			assert.Equal(t, fprint.RetryCenterFinger, retry.Reason)
		}
		events = append(events, event{completed: stages, retry: retry != nil})
	})
	require.NoError(t, err)

	want := []event{
		{completed: 1},
		{completed: 1, retry: true},
		{completed: 2},
		{completed: 3},
	}
	assert.Equal(t, want, events)
}

func TestEnrollCancel(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{
		EnrollStages: 5,
		StageDelayMS: 30,
	})
	openDevice(t, dev)

	tmpl := newTemplate(t, dev, "carol", fprint.FingerUnknown)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Millisecond)
	defer cancel()
	_, err := dev.Enroll(ctx, tmpl, nil)
	require.Error(t, err)
	assert.Equal(t, fprint.KindCancelled, fprint.KindOf(err))

	// The device survives a cancelled operation and stays usable.
	assert.True(t, dev.IsOpen())
	_, err = dev.CaptureImage(context.Background(), false)
	assert.NoError(t, err)
}

func TestVerifyMatchAndMismatch(t *testing.T) {
	t.Parallel()
	_, scanner, dev := newTestContext(t)
	openDevice(t, dev)

	payload := []byte("ridge pattern one")
	scanner.PushScan(payload)
	enrolled, err := dev.Enroll(context.Background(), newTemplate(t, dev, "dave", fprint.FingerRightThumb), nil)
	require.NoError(t, err)

	scanner.PushScan(payload)
	var sawMatch bool
	match, scan, err := dev.Verify(context.Background(), enrolled, func(_ *fprint.Device, matched, _ *fprint.Print, err error) {
		assert.NoError(t, err)
		sawMatch = matched != nil
	})
	require.NoError(t, err)
	assert.True(t, match)
	assert.True(t, sawMatch)
	require.NotNil(t, scan)

	scanner.PushScan([]byte("a different finger"))
	match, _, err = dev.Verify(context.Background(), enrolled, nil)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyNilPrint(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	openDevice(t, dev)

	_, _, err := dev.Verify(context.Background(), nil, nil)
	assert.Equal(t, fprint.KindInvalidArgument, fprint.KindOf(err))
}

func TestIdentify(t *testing.T) {
	t.Parallel()
	_, scanner, dev := newTestContext(t)
	openDevice(t, dev)

	payloadA := []byte("print-a")
	payloadB := []byte("print-b")

	scanner.PushScan(payloadA)
	printA, err := dev.Enroll(context.Background(), newTemplate(t, dev, "anna", fprint.FingerLeftIndex), nil)
	require.NoError(t, err)
	scanner.PushScan(payloadB)
	printB, err := dev.Enroll(context.Background(), newTemplate(t, dev, "ben", fprint.FingerRightIndex), nil)
	require.NoError(t, err)

	scanner.PushScan(payloadB)
	matched, scan, err := dev.Identify(context.Background(), []*fprint.Print{printA, printB}, nil)
	require.NoError(t, err)
	require.NotNil(t, scan)
	// The matched result is the caller's own candidate handle.
	assert.Same(t, printB, matched)

	scanner.PushScan([]byte("a stranger"))
	matched, _, err = dev.Identify(context.Background(), []*fprint.Print{printA, printB}, nil)
	require.NoError(t, err)
	assert.Nil(t, matched)
}

func TestIdentifyEmptyGallery(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	openDevice(t, dev)

	matched, scan, err := dev.Identify(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, matched)
	assert.Nil(t, scan)
}

func TestOperationInFlight(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{
		EnrollStages: 3,
		StageDelayMS: 50,
	})
	openDevice(t, dev)

	tmpl := newTemplate(t, dev, "erin", fprint.FingerUnknown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := dev.Enroll(ctx, tmpl, nil)
		done <- err
	}()

	// Let the enrollment reach its first stage wait.
	time.Sleep(20 * time.Millisecond)
	_, err := dev.CaptureImage(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, fprint.KindBusy, fprint.KindOf(err))
	assert.ErrorIs(t, err, fprint.ErrOperationInFlight)

	cancel()
	err = <-done
	require.Error(t, err)
	assert.Equal(t, fprint.KindCancelled, fprint.KindOf(err))

	// The guard is released once the operation finishes.
	_, err = dev.CaptureImage(context.Background(), false)
	assert.NoError(t, err)
}

func TestCaptureImage(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t)
	openDevice(t, dev)

	img, err := dev.CaptureImage(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Width())
	assert.Equal(t, 64, img.Height())
	assert.Len(t, img.Data(), 64*64)

	gray := img.Gray()
	assert.Equal(t, 64, gray.Bounds().Dx())
	assert.Equal(t, 64, gray.Bounds().Dy())
}

func TestFingerStatus(t *testing.T) {
	t.Parallel()
	_, scanner, dev := newTestContext(t)

	assert.Equal(t, fprint.FingerStatus(0), dev.FingerStatus())
	scanner.PushScan([]byte("touch"))
	assert.Equal(t, fprint.FingerStatusPresent, dev.FingerStatus())
}

func TestClosedContextRejectsDeviceOperations(t *testing.T) {
	t.Parallel()
	ctx, _, dev := newTestContext(t)
	openDevice(t, dev)
	require.NoError(t, ctx.Close())

	background := context.Background()
	assert.ErrorIs(t, dev.Open(background), fprint.ErrContextClosed)
	assert.ErrorIs(t, dev.Close(background), fprint.ErrContextClosed)
	_, err := dev.NewPrint()
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
	_, err = dev.Enroll(background, nil, nil)
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
	_, _, err = dev.Verify(background, nil, nil)
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
	_, _, err = dev.Identify(background, nil, nil)
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
	_, err = dev.CaptureImage(background, false)
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
}

func TestEnrollCallbackCapturesState(t *testing.T) {
	t.Parallel()
	_, _, dev := newTestContext(t, virtualdev.DeviceSpec{EnrollStages: 4})
	openDevice(t, dev)

	// Per-enrollment state lives in the closure, not in any shared
	// registration on the device.
	type tally struct{ calls, last int }
	var got tally
	_, err := dev.Enroll(context.Background(), newTemplate(t, dev, "fay", fprint.FingerLeftRing), func(_ *fprint.Device, stages int, _ *fprint.Print, _ error) {
		got.calls++
		got.last = stages
	})
	require.NoError(t, err)
	assert.Equal(t, tally{calls: 4, last: 4}, got)
}

func TestKindOfForeignError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, fprint.KindUnknown, fprint.KindOf(errors.New("boom")))
	assert.Equal(t, fprint.KindUnknown, fprint.KindOf(fprint.ErrDeviceNotOpen))
	assert.Equal(t, fprint.KindUnknown, fprint.KindOf(nil))
}
