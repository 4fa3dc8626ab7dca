//go:build fprintcgo && cgo && !windows

package backend

/*
#include <glib.h>
#include <gio/gio.h>
#include <fprint.h>
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// The registry passes Go callback state through the native library as
// an opaque cookie instead of a real pointer, keeping the cgo pointer
// rules intact. An entry lives exactly as long as the enclosing native
// call: put before the call, del once it returns, so a late trampoline
// invocation can never observe freed state.
type handle uintptr

var (
	regMu   sync.Mutex
	regNext handle = 1
	reg            = map[handle]any{}
)

func put(v any) (handle, unsafe.Pointer) {
	regMu.Lock()
	h := regNext
	regNext++
	reg[h] = v
	regMu.Unlock()
	return h, unsafe.Pointer(uintptr(h))
}

func get(ptr unsafe.Pointer) (any, bool) {
	regMu.Lock()
	v, ok := reg[handle(uintptr(ptr))]
	regMu.Unlock()
	return v, ok
}

func del(h handle) {
	regMu.Lock()
	delete(reg, h)
	regMu.Unlock()
}

type enrollSession struct {
	progress func(driver.EnrollStage)
}

type matchSession struct {
	progress func(driver.MatchEvent)
}

//export fprintgoEnrollProgress
func fprintgoEnrollProgress(cdev *C.FpDevice, completed C.gint, cprint *C.FpPrint, userData C.gpointer, gerr *C.GError) {
	v, ok := get(unsafe.Pointer(userData))
	if !ok {
		return
	}
	s, ok := v.(*enrollSession)
	if !ok || s.progress == nil {
		return
	}
	stage := driver.EnrollStage{Completed: int(completed)}
	if cprint != nil {
		stage.Print = refPrint(cprint)
	}
	if gerr != nil {
		stage.Err = copyGError(gerr)
	}
	s.progress(stage)
}

//export fprintgoMatchCb
func fprintgoMatchCb(cdev *C.FpDevice, cmatch *C.FpPrint, cprint *C.FpPrint, userData C.gpointer, gerr *C.GError) {
	v, ok := get(unsafe.Pointer(userData))
	if !ok {
		return
	}
	s, ok := v.(*matchSession)
	if !ok || s.progress == nil {
		return
	}
	var ev driver.MatchEvent
	if cmatch != nil {
		ev.Match = refPrint(cmatch)
	}
	if cprint != nil {
		ev.Scan = refPrint(cprint)
	}
	if gerr != nil {
		ev.Err = copyGError(gerr)
	}
	s.progress(ev)
}

// newCancellable bridges a context to a GCancellable. The returned stop
// function must be called once the native call has returned; it tears
// down the watcher goroutine and drops the cancellable's reference.
func newCancellable(ctx context.Context) (*C.GCancellable, func()) {
	canc := C.g_cancellable_new()
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			C.g_cancellable_cancel(canc)
		case <-done:
		}
	}()
	return canc, func() {
		close(done)
		C.g_object_unref(C.gpointer(unsafe.Pointer(canc)))
	}
}
