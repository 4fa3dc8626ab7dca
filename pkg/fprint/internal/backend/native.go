//go:build fprintcgo && cgo && !windows

package backend

/*
#cgo pkg-config: libfprint-2 glib-2.0 gobject-2.0 gio-2.0
#include <stdlib.h>
#include <glib.h>
#include <gio/gio.h>
#include <fprint.h>

extern void fprintgoEnrollProgress(FpDevice *device, gint completed_stages, FpPrint *print, gpointer user_data, GError *error);
extern void fprintgoMatchCb(FpDevice *device, FpPrint *match, FpPrint *print, gpointer user_data, GError *error);

static FpEnrollProgress fprintgo_enroll_progress_ptr(void) { return fprintgoEnrollProgress; }
static FpMatchCb fprintgo_match_ptr(void) { return fprintgoMatchCb; }
*/
import "C"

import (
	"context"
	"runtime"
	"time"
	"unsafe"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// Built reports whether the native bindings were compiled in.
func Built() bool { return true }

// New initializes the native libfprint context and returns it as a
// driver. The context owns device enumeration; devices borrowed from it
// are released when the driver is closed.
func New() (driver.Driver, error) {
	cctx := C.fp_context_new()
	if cctx == nil {
		return nil, driver.Errorf(driver.StatusGeneral, "fp_context_new returned NULL")
	}
	d := &nativeDriver{ctx: cctx}
	runtime.SetFinalizer(d, func(d *nativeDriver) { _ = d.Close() })
	return d, nil
}

type nativeDriver struct {
	ctx     *C.FpContext
	devices []*device
}

func (d *nativeDriver) Name() string { return "libfprint" }

func (d *nativeDriver) Devices() ([]driver.Device, error) {
	if d.ctx == nil {
		return nil, driver.Errorf(driver.StatusGeneral, "context destroyed")
	}
	C.fp_context_enumerate(d.ctx)
	arr := C.fp_context_get_devices(d.ctx)
	if arr == nil {
		return nil, driver.Errorf(driver.StatusGeneral, "device enumeration failed")
	}
	n := int(arr.len)
	out := make([]driver.Device, 0, n)
	if n > 0 {
		slots := unsafe.Slice(arr.pdata, n)
		for _, slot := range slots {
			cdev := (*C.FpDevice)(unsafe.Pointer(slot))
			// The array belongs to the context; take our own reference
			// so the wrapper survives re-enumeration.
			C.g_object_ref(C.gpointer(unsafe.Pointer(cdev)))
			dev := &device{dev: cdev}
			d.devices = append(d.devices, dev)
			out = append(out, dev)
		}
	}
	runtime.KeepAlive(d)
	return out, nil
}

func (d *nativeDriver) DeserializePrint(data []byte) (driver.Print, error) {
	if len(data) == 0 {
		return nil, driver.Errorf(driver.StatusDataInvalid, "empty print data")
	}
	var gerr *C.GError
	cp := C.fp_print_deserialize((*C.guchar)(unsafe.Pointer(&data[0])), C.gsize(len(data)), &gerr)
	runtime.KeepAlive(data)
	if cp == nil {
		return nil, takeGError(gerr)
	}
	return wrapPrint(cp), nil
}

func (d *nativeDriver) Close() error {
	if d.ctx == nil {
		return nil
	}
	runtime.SetFinalizer(d, nil)
	for _, dev := range d.devices {
		dev.release()
	}
	d.devices = nil
	C.g_object_unref(C.gpointer(unsafe.Pointer(d.ctx)))
	d.ctx = nil
	return nil
}

type device struct {
	dev *C.FpDevice
}

func (d *device) release() {
	if d.dev != nil {
		C.g_object_unref(C.gpointer(unsafe.Pointer(d.dev)))
		d.dev = nil
	}
}

func (d *device) Info() driver.DeviceInfo {
	return driver.DeviceInfo{
		Name:   C.GoString(C.fp_device_get_name(d.dev)),
		Driver: C.GoString(C.fp_device_get_driver(d.dev)),
		ID:     C.GoString(C.fp_device_get_device_id(d.dev)),
	}
}

func (d *device) Open(ctx context.Context) error {
	canc, stop := newCancellable(ctx)
	defer stop()
	var gerr *C.GError
	ok := C.fp_device_open_sync(d.dev, canc, &gerr)
	runtime.KeepAlive(d)
	if ok == C.FALSE {
		return takeGError(gerr)
	}
	return nil
}

func (d *device) Close(ctx context.Context) error {
	canc, stop := newCancellable(ctx)
	defer stop()
	var gerr *C.GError
	ok := C.fp_device_close_sync(d.dev, canc, &gerr)
	runtime.KeepAlive(d)
	if ok == C.FALSE {
		return takeGError(gerr)
	}
	return nil
}

func (d *device) EnrollStages() int {
	return int(C.fp_device_get_nr_enroll_stages(d.dev))
}

func (d *device) ScanType() driver.ScanType {
	if C.fp_device_get_scan_type(d.dev) == C.FP_SCAN_TYPE_SWIPE {
		return driver.ScanTypeSwipe
	}
	return driver.ScanTypePress
}

var featureBits = []struct {
	native C.FpDeviceFeature
	flag   driver.Feature
}{
	{C.FP_DEVICE_FEATURE_CAPTURE, driver.FeatureCapture},
	{C.FP_DEVICE_FEATURE_IDENTIFY, driver.FeatureIdentify},
	{C.FP_DEVICE_FEATURE_VERIFY, driver.FeatureVerify},
	{C.FP_DEVICE_FEATURE_STORAGE, driver.FeatureStorage},
	{C.FP_DEVICE_FEATURE_STORAGE_LIST, driver.FeatureStorageList},
	{C.FP_DEVICE_FEATURE_STORAGE_DELETE, driver.FeatureStorageDelete},
	{C.FP_DEVICE_FEATURE_STORAGE_CLEAR, driver.FeatureStorageClear},
	{C.FP_DEVICE_FEATURE_DUPLICATES_CHECK, driver.FeatureDuplicatesCheck},
	{C.FP_DEVICE_FEATURE_ALWAYS_ON, driver.FeatureAlwaysOn},
	{C.FP_DEVICE_FEATURE_UPDATE_PRINT, driver.FeatureUpdatePrint},
}

func (d *device) Features() driver.Feature {
	native := C.fp_device_get_features(d.dev)
	var out driver.Feature
	for _, b := range featureBits {
		if native&b.native != 0 {
			out |= b.flag
		}
	}
	return out
}

func (d *device) FingerStatus() driver.FingerStatus {
	native := C.fp_device_get_finger_status(d.dev)
	var out driver.FingerStatus
	if native&C.FP_FINGER_STATUS_NEEDED != 0 {
		out |= driver.FingerStatusNeeded
	}
	if native&C.FP_FINGER_STATUS_PRESENT != 0 {
		out |= driver.FingerStatusPresent
	}
	return out
}

func (d *device) NewPrint() (driver.Print, error) {
	cp := C.fp_print_new(d.dev)
	runtime.KeepAlive(d)
	if cp == nil {
		return nil, driver.Errorf(driver.StatusGeneral, "fp_print_new returned NULL")
	}
	return wrapPrint(cp), nil
}

func (d *device) Enroll(ctx context.Context, template driver.Print, progress func(driver.EnrollStage)) (driver.Print, error) {
	tp, err := nativePrint(template)
	if err != nil {
		return nil, err
	}
	canc, stop := newCancellable(ctx)
	defer stop()

	var cb C.FpEnrollProgress
	var userData C.gpointer
	if progress != nil {
		h, ptr := put(&enrollSession{progress: progress})
		defer del(h)
		cb = C.fprintgo_enroll_progress_ptr()
		userData = C.gpointer(ptr)
	}

	// fp_device_enroll_sync steals a reference to the template; take an
	// extra one so the caller's wrapper stays valid.
	C.g_object_ref(C.gpointer(unsafe.Pointer(tp.p)))
	var gerr *C.GError
	out := C.fp_device_enroll_sync(d.dev, tp.p, canc, cb, userData, &gerr)
	runtime.KeepAlive(tp)
	runtime.KeepAlive(d)
	if out == nil {
		return nil, takeGError(gerr)
	}
	return wrapPrint(out), nil
}

func (d *device) Verify(ctx context.Context, enrolled driver.Print, progress func(driver.MatchEvent)) (bool, driver.Print, error) {
	ep, err := nativePrint(enrolled)
	if err != nil {
		return false, nil, err
	}
	canc, stop := newCancellable(ctx)
	defer stop()

	var cb C.FpMatchCb
	var userData C.gpointer
	if progress != nil {
		h, ptr := put(&matchSession{progress: progress})
		defer del(h)
		cb = C.fprintgo_match_ptr()
		userData = C.gpointer(ptr)
	}

	var matched C.gboolean
	var scan *C.FpPrint
	var gerr *C.GError
	ok := C.fp_device_verify_sync(d.dev, ep.p, canc, cb, userData, &matched, &scan, &gerr)
	runtime.KeepAlive(ep)
	runtime.KeepAlive(d)
	if ok == C.FALSE {
		return false, nil, takeGError(gerr)
	}
	var scanPrint driver.Print
	if scan != nil {
		scanPrint = wrapPrint(scan)
	}
	return matched == C.TRUE, scanPrint, nil
}

func (d *device) Identify(ctx context.Context, candidates []driver.Print, progress func(driver.MatchEvent)) (int, driver.Print, error) {
	gallery := C.g_ptr_array_sized_new(C.guint(len(candidates)))
	defer C.g_ptr_array_unref(gallery)
	native := make([]*print, len(candidates))
	for i, cand := range candidates {
		cp, err := nativePrint(cand)
		if err != nil {
			return -1, nil, err
		}
		native[i] = cp
		C.g_ptr_array_add(gallery, C.gpointer(unsafe.Pointer(cp.p)))
	}

	canc, stop := newCancellable(ctx)
	defer stop()

	var cb C.FpMatchCb
	var userData C.gpointer
	if progress != nil {
		h, ptr := put(&matchSession{progress: progress})
		defer del(h)
		cb = C.fprintgo_match_ptr()
		userData = C.gpointer(ptr)
	}

	var match *C.FpPrint
	var scan *C.FpPrint
	var gerr *C.GError
	ok := C.fp_device_identify_sync(d.dev, gallery, canc, cb, userData, &match, &scan, &gerr)
	runtime.KeepAlive(native)
	runtime.KeepAlive(d)
	if ok == C.FALSE {
		return -1, nil, takeGError(gerr)
	}
	var scanPrint driver.Print
	if scan != nil {
		scanPrint = wrapPrint(scan)
	}
	idx := -1
	if match != nil {
		for i, cp := range native {
			if cp.p == match {
				idx = i
				break
			}
		}
		// The out-parameter carried its own reference.
		C.g_object_unref(C.gpointer(unsafe.Pointer(match)))
	}
	return idx, scanPrint, nil
}

func (d *device) Capture(ctx context.Context, waitForFinger bool) (*driver.Image, error) {
	canc, stop := newCancellable(ctx)
	defer stop()
	wait := C.gboolean(C.FALSE)
	if waitForFinger {
		wait = C.TRUE
	}
	var gerr *C.GError
	img := C.fp_device_capture_sync(d.dev, wait, canc, &gerr)
	runtime.KeepAlive(d)
	if img == nil {
		return nil, takeGError(gerr)
	}
	defer C.g_object_unref(C.gpointer(unsafe.Pointer(img)))

	var length C.gsize
	data := C.fp_image_get_data(img, &length)
	out := &driver.Image{
		Width:  int(C.fp_image_get_width(img)),
		Height: int(C.fp_image_get_height(img)),
	}
	if data != nil && length > 0 {
		out.Data = C.GoBytes(unsafe.Pointer(data), C.int(length))
	}
	return out, nil
}

type print struct {
	p *C.FpPrint
}

// wrapPrint takes ownership of an FpPrint reference.
func wrapPrint(cp *C.FpPrint) *print {
	pr := &print{p: cp}
	runtime.SetFinalizer(pr, func(pr *print) { _ = pr.Close() })
	return pr
}

// refPrint wraps a borrowed FpPrint, taking a reference of its own so
// the wrapper cannot outlive the native object.
func refPrint(cp *C.FpPrint) *print {
	C.g_object_ref(C.gpointer(unsafe.Pointer(cp)))
	return wrapPrint(cp)
}

func nativePrint(p driver.Print) (*print, error) {
	np, ok := p.(*print)
	if !ok || np.p == nil {
		return nil, driver.Errorf(driver.StatusDataInvalid, "print does not belong to the native driver")
	}
	return np, nil
}

func (p *print) Username() string {
	name := C.fp_print_get_username(p.p)
	runtime.KeepAlive(p)
	return C.GoString(name)
}

func (p *print) SetUsername(username string) error {
	cstr := C.CString(username)
	defer C.free(unsafe.Pointer(cstr))
	C.fp_print_set_username(p.p, cstr)
	runtime.KeepAlive(p)
	return nil
}

var fingerFromNative = map[C.FpFinger]driver.Finger{
	C.FP_FINGER_UNKNOWN:      driver.FingerUnknown,
	C.FP_FINGER_LEFT_THUMB:   driver.FingerLeftThumb,
	C.FP_FINGER_LEFT_INDEX:   driver.FingerLeftIndex,
	C.FP_FINGER_LEFT_MIDDLE:  driver.FingerLeftMiddle,
	C.FP_FINGER_LEFT_RING:    driver.FingerLeftRing,
	C.FP_FINGER_LEFT_LITTLE:  driver.FingerLeftLittle,
	C.FP_FINGER_RIGHT_THUMB:  driver.FingerRightThumb,
	C.FP_FINGER_RIGHT_INDEX:  driver.FingerRightIndex,
	C.FP_FINGER_RIGHT_MIDDLE: driver.FingerRightMiddle,
	C.FP_FINGER_RIGHT_RING:   driver.FingerRightRing,
	C.FP_FINGER_RIGHT_LITTLE: driver.FingerRightLittle,
}

func (p *print) Finger() driver.Finger {
	native := C.fp_print_get_finger(p.p)
	runtime.KeepAlive(p)
	return fingerFromNative[native]
}

func (p *print) SetFinger(finger driver.Finger) error {
	var native C.FpFinger = C.FP_FINGER_UNKNOWN
	for cf, f := range fingerFromNative {
		if f == finger {
			native = cf
			break
		}
	}
	C.fp_print_set_finger(p.p, native)
	runtime.KeepAlive(p)
	return nil
}

func (p *print) DeviceID() string {
	id := C.fp_print_get_device_id(p.p)
	runtime.KeepAlive(p)
	return C.GoString(id)
}

func (p *print) DriverName() string {
	name := C.fp_print_get_driver(p.p)
	runtime.KeepAlive(p)
	return C.GoString(name)
}

func (p *print) EnrollDate() time.Time {
	date := C.fp_print_get_enroll_date(p.p)
	runtime.KeepAlive(p)
	if date == nil || C.g_date_valid(date) == C.FALSE {
		return time.Time{}
	}
	return time.Date(
		int(C.g_date_get_year(date)),
		time.Month(C.g_date_get_month(date)),
		int(C.g_date_get_day(date)),
		0, 0, 0, 0, time.UTC,
	)
}

func (p *print) Serialize() ([]byte, error) {
	var data *C.guchar
	var length C.gsize
	var gerr *C.GError
	ok := C.fp_print_serialize(p.p, &data, &length, &gerr)
	runtime.KeepAlive(p)
	if ok == C.FALSE {
		return nil, takeGError(gerr)
	}
	out := C.GoBytes(unsafe.Pointer(data), C.int(length))
	C.g_free(C.gpointer(unsafe.Pointer(data)))
	return out, nil
}

func (p *print) Close() error {
	if p.p == nil {
		return nil
	}
	runtime.SetFinalizer(p, nil)
	C.g_object_unref(C.gpointer(unsafe.Pointer(p.p)))
	p.p = nil
	return nil
}
