// Command fprint-go exercises a fingerprint scanner from the command
// line: list devices, run an enrollment, verify a stored print, or
// capture a raw frame to a PGM file.
//
// By default it binds the native libfprint bindings (build with
// -tags fprintcgo). With -gallery it loads virtual scanners from a
// TOML file instead, which works in any build.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spakin/netpbm"

	"github.com/openbiometrics/libfprint-go/pkg/fprint"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/virtualdev"
)

func main() {
	log.SetFlags(0)

	gallery := flag.String("gallery", "", "TOML gallery of virtual scanners instead of native hardware")
	device := flag.Int("device", 0, "index of the device to use")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fpctx, err := newContext(*gallery)
	if err != nil {
		if errors.Is(err, fprint.ErrNotBuilt) {
			log.Fatalf("native bindings not built; rebuild with -tags fprintcgo or use -gallery")
		}
		log.Fatalf("initialize: %v", err)
	}
	defer fpctx.Close()

	switch cmd := flag.Arg(0); cmd {
	case "list":
		err = runList(fpctx)
	case "enroll":
		err = runEnroll(ctx, fpctx, *device, flag.Args()[1:])
	case "verify":
		err = runVerify(ctx, fpctx, *device, flag.Args()[1:])
	case "capture":
		err = runCapture(ctx, fpctx, *device, flag.Args()[1:])
	default:
		log.Printf("unknown command %q", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: fprint-go [flags] <command> [args]

commands:
  list                         list attached scanners
  enroll  -user U -out FILE    enroll a finger and save the print
  verify  -in FILE             verify a finger against a saved print
  capture -out FILE            capture a raw frame as PGM

flags:
`)
	flag.PrintDefaults()
}

func newContext(gallery string) (*fprint.Context, error) {
	if gallery == "" {
		return fprint.New()
	}
	drv, err := virtualdev.Load(gallery)
	if err != nil {
		return nil, err
	}
	return fprint.New(fprint.WithDriver(drv))
}

func pickDevice(fpctx *fprint.Context, index int) (*fprint.Device, error) {
	devs, err := fpctx.Devices()
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, errors.New("no fingerprint devices found")
	}
	if index < 0 || index >= len(devs) {
		return nil, fmt.Errorf("device index %d out of range (have %d)", index, len(devs))
	}
	return devs[index], nil
}

func runList(fpctx *fprint.Context) error {
	devs, err := fpctx.Devices()
	if err != nil {
		return err
	}
	if len(devs) == 0 {
		fmt.Println("no fingerprint devices found")
		return nil
	}
	for i, dev := range devs {
		fmt.Printf("[%d] %s\n", i, dev.Name())
		fmt.Printf("    driver: %s  id: %s\n", dev.DriverName(), dev.ID())
		fmt.Printf("    scan type: %s  enroll stages: %d\n", dev.ScanType(), dev.NrEnrollStages())
	}
	return nil
}

func runEnroll(ctx context.Context, fpctx *fprint.Context, index int, args []string) error {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	user := fs.String("user", "", "username to record in the print")
	finger := fs.String("finger", "right-index", "finger being enrolled")
	out := fs.String("out", "print.bin", "file to write the serialized print to")
	fs.Parse(args)

	dev, err := pickDevice(fpctx, index)
	if err != nil {
		return err
	}
	if err := dev.Open(ctx); err != nil {
		return err
	}
	defer dev.Close(ctx)

	template, err := dev.NewPrint()
	if err != nil {
		return err
	}
	if *user != "" {
		if err := template.SetUsername(*user); err != nil {
			return err
		}
	}
	if err := template.SetFinger(fprint.ParseFinger(*finger)); err != nil {
		return err
	}

	total := dev.NrEnrollStages()
	fmt.Printf("enrolling on %s (%d stages)\n", dev.Name(), total)
	print, err := dev.Enroll(ctx, template, func(_ *fprint.Device, completed int, _ *fprint.Print, err error) {
		var retry *fprint.RetryError
		if errors.As(err, &retry) {
			fmt.Printf("  stage %d/%d: retry: %v\n", completed, total, retry)
			return
		}
		fmt.Printf("  stage %d/%d done\n", completed, total)
	})
	if err != nil {
		return err
	}

	data, err := print.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return err
	}
	fmt.Printf("enrolled %s (%s), print written to %s\n", print.Username(), print.Finger(), *out)
	return nil
}

func runVerify(ctx context.Context, fpctx *fprint.Context, index int, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "print.bin", "file holding the serialized print")
	fs.Parse(args)

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	enrolled, err := fpctx.DeserializePrint(data)
	if err != nil {
		return err
	}

	dev, err := pickDevice(fpctx, index)
	if err != nil {
		return err
	}
	if err := dev.Open(ctx); err != nil {
		return err
	}
	defer dev.Close(ctx)

	fmt.Printf("verifying against %s on %s\n", enrolled.Username(), dev.Name())
	match, _, err := dev.Verify(ctx, enrolled, nil)
	if err != nil {
		return err
	}
	if !match {
		fmt.Println("no match")
		os.Exit(1)
	}
	fmt.Println("match")
	return nil
}

func runCapture(ctx context.Context, fpctx *fprint.Context, index int, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	out := fs.String("out", "capture.pgm", "file to write the PGM frame to")
	wait := fs.Bool("wait", true, "wait for a finger before capturing")
	fs.Parse(args)

	dev, err := pickDevice(fpctx, index)
	if err != nil {
		return err
	}
	if !dev.HasFeature(fprint.FeatureCapture) {
		return errors.New("device does not support capture")
	}
	if err := dev.Open(ctx); err != nil {
		return err
	}
	defer dev.Close(ctx)

	img, err := dev.CaptureImage(ctx, *wait)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := netpbm.Encode(f, img.Gray(), &netpbm.EncodeOptions{
		Format:   netpbm.PGM,
		MaxValue: 255,
		Plain:    false,
	}); err != nil {
		return err
	}
	fmt.Printf("captured %dx%d frame to %s\n", img.Width(), img.Height(), *out)
	return nil
}
