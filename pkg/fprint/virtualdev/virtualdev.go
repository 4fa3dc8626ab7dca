package virtualdev

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// Driver is a gallery of virtual scanners.
type Driver struct {
	mu       sync.Mutex
	scanners []*Scanner
	closed   bool
}

var _ driver.Driver = (*Driver)(nil)

// Name identifies the backend.
func (d *Driver) Name() string { return "virtual" }

// Scanners returns the gallery's scanners with their concrete type, so
// callers can push scan payloads.
func (d *Driver) Scanners() []*Scanner {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Scanner(nil), d.scanners...)
}

// Devices enumerates the virtual scanners.
func (d *Driver) Devices() ([]driver.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, driver.Errorf(driver.StatusGeneral, "virtual driver closed")
	}
	out := make([]driver.Device, len(d.scanners))
	for i, s := range d.scanners {
		out[i] = s
	}
	return out, nil
}

// DeserializePrint decodes the CBOR print container produced by the
// virtual backend.
func (d *Driver) DeserializePrint(data []byte) (driver.Print, error) {
	var c printContainer
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, driver.Errorf(driver.StatusDataInvalid, "malformed print container: %v", err)
	}
	if c.Version != printContainerVersion {
		return nil, driver.Errorf(driver.StatusDataInvalid, "unsupported print container version %d", c.Version)
	}
	return &vprint{
		username: c.Username,
		finger:   driver.Finger(c.Finger),
		deviceID: c.DeviceID,
		drv:      c.Driver,
		enrolled: time.Unix(c.Enrolled, 0).UTC(),
		payload:  append([]byte(nil), c.Payload...),
	}, nil
}

// Close shuts the gallery down.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Scanner is one virtual fingerprint scanner.
type Scanner struct {
	spec     DeviceSpec
	scanType driver.ScanType

	mu    sync.Mutex
	open  bool
	queue [][]byte
	seq   int
}

var _ driver.Device = (*Scanner)(nil)

// PushScan queues the payload the scanner will produce on its next
// capture. Payloads are compared byte-for-byte to decide matches.
func (s *Scanner) PushScan(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, append([]byte(nil), payload...))
}

func (s *Scanner) nextScan() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > 0 {
		payload := s.queue[0]
		s.queue = s.queue[1:]
		return payload
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s/%d", s.spec.ID, s.seq))
	s.seq++
	return sum[:]
}

func (s *Scanner) Info() driver.DeviceInfo {
	return driver.DeviceInfo{Name: s.spec.Name, Driver: "virtual", ID: s.spec.ID}
}

func (s *Scanner) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return &driver.Error{Status: driver.StatusAlreadyOpen}
	}
	s.open = true
	return nil
}

func (s *Scanner) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return &driver.Error{Status: driver.StatusNotOpen}
	}
	s.open = false
	return nil
}

func (s *Scanner) EnrollStages() int         { return s.spec.EnrollStages }
func (s *Scanner) ScanType() driver.ScanType { return s.scanType }

func (s *Scanner) Features() driver.Feature {
	return driver.FeatureCapture | driver.FeatureIdentify | driver.FeatureVerify
}

func (s *Scanner) FingerStatus() driver.FingerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > 0 {
		return driver.FingerStatusPresent
	}
	return 0
}

func (s *Scanner) NewPrint() (driver.Print, error) {
	return &vprint{deviceID: s.spec.ID, drv: "virtual"}, nil
}

// stageWait simulates sensor latency while honoring cancellation.
func (s *Scanner) stageWait(ctx context.Context) error {
	delay := time.Duration(s.spec.StageDelayMS) * time.Millisecond
	if delay <= 0 {
		select {
		case <-ctx.Done():
			return &driver.Error{Status: driver.StatusCancelled, Message: ctx.Err().Error()}
		default:
			return nil
		}
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &driver.Error{Status: driver.StatusCancelled, Message: ctx.Err().Error()}
	case <-timer.C:
		return nil
	}
}

func (s *Scanner) Enroll(ctx context.Context, template driver.Print, progress func(driver.EnrollStage)) (driver.Print, error) {
	tmpl, err := ownPrint(template)
	if err != nil {
		return nil, err
	}
	retry := make(map[int]bool, len(s.spec.RetryStages))
	for _, st := range s.spec.RetryStages {
		retry[st] = true
	}

	payload := s.nextScan()
	completed := 0
	for stage := 1; stage <= s.spec.EnrollStages; stage++ {
		if err := s.stageWait(ctx); err != nil {
			return nil, err
		}
		if retry[stage] {
			if progress != nil {
				progress(driver.EnrollStage{
					Completed: completed,
					Err:       &driver.RetryError{Reason: driver.RetryCenterFinger},
				})
			}
			if err := s.stageWait(ctx); err != nil {
				return nil, err
			}
		}
		completed++
		if progress != nil {
			progress(driver.EnrollStage{
				Completed: completed,
				Print:     s.result(tmpl, payload),
			})
		}
	}
	return s.result(tmpl, payload), nil
}

func (s *Scanner) result(tmpl *vprint, payload []byte) *vprint {
	return &vprint{
		username: tmpl.username,
		finger:   tmpl.finger,
		deviceID: s.spec.ID,
		drv:      "virtual",
		enrolled: time.Now().UTC().Truncate(time.Second),
		payload:  append([]byte(nil), payload...),
	}
}

func (s *Scanner) scanPrint(payload []byte) *vprint {
	return &vprint{
		deviceID: s.spec.ID,
		drv:      "virtual",
		enrolled: time.Now().UTC().Truncate(time.Second),
		payload:  append([]byte(nil), payload...),
	}
}

func (s *Scanner) Verify(ctx context.Context, enrolled driver.Print, progress func(driver.MatchEvent)) (bool, driver.Print, error) {
	ep, err := ownPrint(enrolled)
	if err != nil {
		return false, nil, err
	}
	if err := s.stageWait(ctx); err != nil {
		return false, nil, err
	}
	payload := s.nextScan()
	scan := s.scanPrint(payload)
	match := bytes.Equal(ep.payload, payload)
	if progress != nil {
		ev := driver.MatchEvent{Scan: scan}
		if match {
			ev.Match = ep
		}
		progress(ev)
	}
	return match, scan, nil
}

func (s *Scanner) Identify(ctx context.Context, candidates []driver.Print, progress func(driver.MatchEvent)) (int, driver.Print, error) {
	gallery := make([]*vprint, len(candidates))
	for i, cand := range candidates {
		vp, err := ownPrint(cand)
		if err != nil {
			return -1, nil, err
		}
		gallery[i] = vp
	}
	if err := s.stageWait(ctx); err != nil {
		return -1, nil, err
	}
	payload := s.nextScan()
	scan := s.scanPrint(payload)
	idx := -1
	for i, cand := range gallery {
		if bytes.Equal(cand.payload, payload) {
			idx = i
			break
		}
	}
	if progress != nil {
		ev := driver.MatchEvent{Scan: scan}
		if idx >= 0 {
			ev.Match = gallery[idx]
		}
		progress(ev)
	}
	return idx, scan, nil
}

const captureSize = 64

func (s *Scanner) Capture(ctx context.Context, waitForFinger bool) (*driver.Image, error) {
	if err := s.stageWait(ctx); err != nil {
		return nil, err
	}
	payload := s.nextScan()
	data := make([]byte, 0, captureSize*captureSize)
	block := sha256.Sum256(payload)
	for len(data) < captureSize*captureSize {
		data = append(data, block[:]...)
		block = sha256.Sum256(block[:])
	}
	return &driver.Image{
		Width:  captureSize,
		Height: captureSize,
		Data:   data[:captureSize*captureSize],
	}, nil
}

func ownPrint(p driver.Print) (*vprint, error) {
	vp, ok := p.(*vprint)
	if !ok {
		return nil, driver.Errorf(driver.StatusDataInvalid, "print does not belong to the virtual driver")
	}
	return vp, nil
}

const printContainerVersion = 1

// printContainer is the stable binary representation of a virtual
// print. Field order defines the encoding; do not reorder.
type printContainer struct {
	Version  int    `cbor:"v"`
	Username string `cbor:"username"`
	Finger   int    `cbor:"finger"`
	DeviceID string `cbor:"device_id"`
	Driver   string `cbor:"driver"`
	Enrolled int64  `cbor:"enrolled"`
	Payload  []byte `cbor:"payload"`
}

type vprint struct {
	username string
	finger   driver.Finger
	deviceID string
	drv      string
	enrolled time.Time
	payload  []byte
}

var _ driver.Print = (*vprint)(nil)

func (p *vprint) Username() string { return p.username }

func (p *vprint) SetUsername(username string) error {
	p.username = username
	return nil
}

func (p *vprint) Finger() driver.Finger { return p.finger }

func (p *vprint) SetFinger(finger driver.Finger) error {
	p.finger = finger
	return nil
}

func (p *vprint) DeviceID() string      { return p.deviceID }
func (p *vprint) DriverName() string    { return p.drv }
func (p *vprint) EnrollDate() time.Time { return p.enrolled }

func (p *vprint) Serialize() ([]byte, error) {
	var enrolled int64
	if !p.enrolled.IsZero() {
		enrolled = p.enrolled.Unix()
	}
	data, err := cbor.Marshal(printContainer{
		Version:  printContainerVersion,
		Username: p.username,
		Finger:   int(p.finger),
		DeviceID: p.deviceID,
		Driver:   p.drv,
		Enrolled: enrolled,
		Payload:  p.payload,
	})
	if err != nil {
		return nil, driver.Errorf(driver.StatusGeneral, "encode print container: %v", err)
	}
	return data, nil
}

func (p *vprint) Close() error { return nil }
