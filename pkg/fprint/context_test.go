package fprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbiometrics/libfprint-go/pkg/fprint"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/virtualdev"
)

func TestNewWithoutNativeBindings(t *testing.T) {
	t.Parallel()
	if fprint.NativeBindingsBuilt() {
		t.Skip("native bindings compiled in")
	}
	ctx, err := fprint.New()
	require.Error(t, err)
	assert.Nil(t, ctx)
	assert.ErrorIs(t, err, fprint.ErrNotBuilt)
	assert.Equal(t, fprint.KindNotSupported, fprint.KindOf(err))
}

func TestContextDriverName(t *testing.T) {
	t.Parallel()
	ctx, _, _ := newTestContext(t)
	assert.Equal(t, "virtual", ctx.DriverName())
}

func TestContextDevices(t *testing.T) {
	t.Parallel()
	drv, err := virtualdev.New(
		virtualdev.DeviceSpec{ID: "virtual/a"},
		virtualdev.DeviceSpec{ID: "virtual/b"},
	)
	require.NoError(t, err)
	ctx, err := fprint.New(fprint.WithDriver(drv))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })

	devs, err := ctx.Devices()
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, "virtual/a", devs[0].ID())
	assert.Equal(t, "virtual/b", devs[1].ID())
}

func TestContextCloseIsTerminal(t *testing.T) {
	t.Parallel()
	ctx, _, _ := newTestContext(t)

	require.NoError(t, ctx.Close())
	assert.ErrorIs(t, ctx.Close(), fprint.ErrContextClosed)

	_, err := ctx.Devices()
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
	_, err = ctx.DeserializePrint([]byte{0x00})
	assert.ErrorIs(t, err, fprint.ErrContextClosed)
}

func TestDeserializeMalformedPrint(t *testing.T) {
	t.Parallel()
	ctx, _, _ := newTestContext(t)

	_, err := ctx.DeserializePrint([]byte("not a print container"))
	require.Error(t, err)
	assert.Equal(t, fprint.KindInvalidArgument, fprint.KindOf(err))
}

func TestWrapperVersion(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, fprint.WrapperVersion())
}
