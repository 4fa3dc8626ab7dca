// Package fprint exposes fingerprint scanners through a safe Go API.
// The native libfprint library performs all device I/O, image
// processing and matching; this package manages handle lifetimes,
// marshals native callbacks into typed Go closures, and translates
// native errors into the exported error model.
//
// Basic enrollment:
//
//	ctx, err := fprint.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	devices, err := ctx.Devices()
//	if err != nil || len(devices) == 0 {
//		log.Fatal("no scanner found")
//	}
//	dev := devices[0]
//	if err := dev.Open(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close(context.Background())
//
//	template, _ := dev.NewPrint()
//	_ = template.SetUsername("bruce.banner")
//	_ = template.SetFinger(fprint.FingerRightIndex)
//
//	enrolled, err := dev.Enroll(context.Background(), template,
//		func(_ *fprint.Device, completed int, _ *fprint.Print, stageErr error) {
//			log.Printf("stage %d/%d (%v)", completed, dev.NrEnrollStages(), stageErr)
//		})
//
// Enroll, Verify and Identify block the calling goroutine until the
// operation reaches a terminal outcome; progress callbacks run
// synchronously on whichever thread the native library invokes them
// from. Cancel an in-flight operation through its context.Context. A
// Device must not run two operations concurrently; attempts to do so
// fail with ErrOperationInFlight.
//
// Builds without the fprintcgo build tag (or without cgo) do not link
// the native library; New then fails with ErrNotBuilt and callers can
// fall back to the virtualdev package.
package fprint
