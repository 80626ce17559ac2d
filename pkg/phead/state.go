package phead

import (
	"fmt"
	"sync"
)

// Device description.
const (
	FWVersion        byte = 0x10 // v1.0, [<4msb>.<4lsb>]
	HWVersion        byte = 0x10
	DefaultModelName      = "SD-PHEAD-1"
	ModelNameSize         = 20
)

// Printing defaults applied at startup and by init without arguments.
const (
	Volume10mL         byte   = 10
	DefaultVolume             = Volume10mL
	DefaultSpeed       uint16 = 5
	DefaultTemperature byte   = 40
)

// ValidVolumes are the syringe sizes in mL the print head accepts.
var ValidVolumes = []byte{1, 3, 5, 10, 30, 50}

// IsValidVolume checks v against ValidVolumes.
func IsValidVolume(v byte) bool {
	for _, vol := range ValidVolumes {
		if v == vol {
			return true
		}
	}
	return false
}

// PowerMode is how the print head is powered.
type PowerMode byte

const (
	// PowerPlug means powered from an external supply.
	PowerPlug PowerMode = iota
	// PowerBattery means battery powered.
	PowerBattery
)

// String implements fmt.Stringer.
func (m PowerMode) String() string {
	if m == PowerBattery {
		return "battery"
	}
	return "plug"
}

// ParsePowerMode parses "plug" or "battery".
func ParsePowerMode(s string) (PowerMode, error) {
	switch s {
	case "", "plug":
		return PowerPlug, nil
	case "battery", "bat":
		return PowerBattery, nil
	}
	return PowerPlug, fmt.Errorf("unknown power mode %q", s)
}

// BatState is the state of the battery, only meaningful in battery mode.
type BatState byte

// Battery states.
const (
	NoBat BatState = iota
	BatCharging
	BatDead
	BatLow
	BatMedium
	BatFull
)

// Capabilities is the set of optional hardware present on the unit.
type Capabilities struct {
	Temperature bool `json:"temperature"`
	UV          bool `json:"uv"`
}

// Profile describes a unit, resolved once at startup.
type Profile struct {
	ModelName    string
	Capabilities Capabilities
	PowerMode    PowerMode
	BatteryLevel uint16
}

// DefaultProfile is a plug powered unit without optional hardware.
func DefaultProfile() Profile {
	return Profile{ModelName: DefaultModelName}
}

// Validate checks the profile.
func (p Profile) Validate() error {
	if p.ModelName == "" || len(p.ModelName) > ModelNameSize {
		return fmt.Errorf("model name must be 1-%d bytes, got %d", ModelNameSize, len(p.ModelName))
	}
	return nil
}

// Snapshot is a copy of State at one point in time.
type Snapshot struct {
	ModelName    string
	Capabilities Capabilities
	PowerMode    PowerMode
	Speed        uint16
	Temperature  byte
	Volume       byte
	UVIntensity  byte
	UVMap        byte
	BatState     BatState
	BatLevel     uint16
}

// State is the device state store. Handlers mutate it with the lock
// held by the Dispatcher for the whole command.
type State struct {
	lock sync.Mutex

	modelName string
	caps      Capabilities
	power     PowerMode

	speed       uint16
	temperature byte
	volume      byte
	uvIntensity byte
	uvMap       byte
	batState    BatState
	batLevel    uint16
}

// NewState creates the state with documented defaults.
func NewState(p Profile) *State {
	s := &State{
		modelName: p.ModelName,
		caps:      p.Capabilities,
		power:     p.PowerMode,
		speed:     DefaultSpeed,
		volume:    DefaultVolume,
	}
	if s.caps.Temperature {
		s.temperature = DefaultTemperature
	}
	if s.power == PowerBattery {
		s.batState, s.batLevel = BatFull, p.BatteryLevel
	}
	return s
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.snapshot()
}

// UpdateBattery records a battery reading. Ignored unless battery powered.
func (s *State) UpdateBattery(state BatState, level uint16) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.power == PowerBattery {
		s.batState, s.batLevel = state, level
	}
}

func (s *State) snapshot() Snapshot {
	return Snapshot{
		ModelName:    s.modelName,
		Capabilities: s.caps,
		PowerMode:    s.power,
		Speed:        s.speed,
		Temperature:  s.temperature,
		Volume:       s.volume,
		UVIntensity:  s.uvIntensity,
		UVMap:        s.uvMap,
		BatState:     s.batState,
		BatLevel:     s.batLevel,
	}
}
