package virtualdev

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// DeviceSpec describes one virtual scanner.
type DeviceSpec struct {
	// ID uniquely identifies the device. Empty IDs are assigned
	// virtual/<index> when the driver is built.
	ID string `toml:"id"`
	// Name is the human-readable product name.
	Name string `toml:"name" default:"Virtual Fingerprint Scanner"`
	// EnrollStages is how many capture stages a full enrollment takes.
	EnrollStages int `toml:"enroll_stages" default:"5"`
	// ScanType is "press" or "swipe".
	ScanType string `toml:"scan_type" default:"press"`
	// StageDelayMS delays each stage, making cancellation windows
	// observable in tests.
	StageDelayMS int `toml:"stage_delay_ms"`
	// RetryStages lists 1-based enrollment stages that report a retry
	// condition before succeeding.
	RetryStages []int `toml:"retry_stages"`
}

func (s *DeviceSpec) scanType() (driver.ScanType, error) {
	switch s.ScanType {
	case "press":
		return driver.ScanTypePress, nil
	case "swipe":
		return driver.ScanTypeSwipe, nil
	default:
		return 0, fmt.Errorf("virtualdev: device %q: unknown scan type %q", s.ID, s.ScanType)
	}
}

type galleryConfig struct {
	Device []DeviceSpec `toml:"device"`
}

// Load builds a Driver from a TOML gallery file. Each [[device]] block
// is a DeviceSpec; omitted fields take their defaults.
func Load(path string) (*Driver, error) {
	var cfg galleryConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("virtualdev: load gallery %s: %w", path, err)
	}
	return New(cfg.Device...)
}

// New builds a Driver from the given specs. With no specs it provides
// a single default scanner.
func New(specs ...DeviceSpec) (*Driver, error) {
	if len(specs) == 0 {
		specs = []DeviceSpec{{}}
	}
	d := &Driver{}
	seen := make(map[string]struct{}, len(specs))
	for i := range specs {
		spec := specs[i]
		defaults.SetDefaults(&spec)
		if spec.ID == "" {
			spec.ID = fmt.Sprintf("virtual/%d", i)
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("virtualdev: duplicate device id %q", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		if spec.EnrollStages < 1 {
			return nil, fmt.Errorf("virtualdev: device %q: enroll_stages must be >= 1", spec.ID)
		}
		st, err := spec.scanType()
		if err != nil {
			return nil, err
		}
		d.scanners = append(d.scanners, &Scanner{spec: spec, scanType: st})
	}
	return d, nil
}
