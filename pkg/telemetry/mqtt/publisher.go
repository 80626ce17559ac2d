package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
	"github.com/smalldrop/phead.go/pkg/phead"
	pb "github.com/smalldrop/phead.go/pkg/proto/phead/v1"
)

// Topic suffixes under <prefix><model>/<id>/.
const (
	MetaTopic  = "meta"
	StateTopic = "state"
)

// DefaultInterval is the default state publishing interval.
const DefaultInterval = time.Second

// Meta is the retained description of a unit.
type Meta struct {
	Model        string             `json:"model"`
	ID           string             `json:"id"`
	FWVersion    byte               `json:"fw_version"`
	HWVersion    byte               `json:"hw_version"`
	Capabilities phead.Capabilities `json:"capabilities"`
	Power        string             `json:"power"`
}

// MetaFor builds Meta from a state snapshot.
func MetaFor(id string, st phead.Snapshot) Meta {
	return Meta{
		Model:        st.ModelName,
		ID:           id,
		FWVersion:    phead.FWVersion,
		HWVersion:    phead.HWVersion,
		Capabilities: st.Capabilities,
		Power:        st.PowerMode.String(),
	}
}

// UnitTopic is the topic of a unit relative to the queue prefix.
func UnitTopic(model, id, suffix string) string {
	return model + "/" + id + "/" + suffix
}

// EncodeState converts a snapshot to the wire message.
func EncodeState(id string, link comm.LinkState, st phead.Snapshot, at time.Time) *pb.DeviceState {
	return &pb.DeviceState{
		ModelName:      st.ModelName,
		UnitId:         id,
		LinkState:      uint32(link),
		Speed:          uint32(st.Speed),
		Temperature:    uint32(st.Temperature),
		Volume:         uint32(st.Volume),
		UvIntensity:    uint32(st.UVIntensity),
		UvMap:          uint32(st.UVMap),
		PowerMode:      uint32(st.PowerMode),
		BatState:       uint32(st.BatState),
		BatLevel:       uint32(st.BatLevel),
		HasTemperature: st.Capabilities.Temperature,
		HasUv:          st.Capabilities.UV,
		Timestamp:      at.UnixNano(),
	}
}

// DecodeState parses a state payload.
func DecodeState(payload []byte) (*pb.DeviceState, phead.Snapshot, error) {
	var msg pb.DeviceState
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, phead.Snapshot{}, err
	}
	if msg.Speed > 0xffff || msg.BatLevel > 0xffff {
		return nil, phead.Snapshot{}, fmt.Errorf("state out of range: %s", msg.String())
	}
	return &msg, phead.Snapshot{
		ModelName: msg.ModelName,
		Capabilities: phead.Capabilities{
			Temperature: msg.HasTemperature,
			UV:          msg.HasUv,
		},
		PowerMode:   phead.PowerMode(msg.PowerMode),
		Speed:       uint16(msg.Speed),
		Temperature: byte(msg.Temperature),
		Volume:      byte(msg.Volume),
		UVIntensity: byte(msg.UvIntensity),
		UVMap:       byte(msg.UvMap),
		BatState:    phead.BatState(msg.BatState),
		BatLevel:    uint16(msg.BatLevel),
	}, nil
}

// StateSource provides the current device state.
type StateSource interface {
	Snapshot() phead.Snapshot
}

// Publisher announces a unit and publishes its state periodically.
// It implements comm.StateNotifier, link state changes are published
// immediately.
type Publisher struct {
	Queue    *Queue
	ID       string
	Source   StateSource
	Interval time.Duration

	meta     Meta
	metaJSON []byte
	lock     sync.Mutex
	link     comm.LinkState
}

// NewPublisher creates a Publisher. The meta topic is cleared by the
// broker when the unit disconnects unexpectedly.
func NewPublisher(brokerURL, id string, src StateSource) (*Publisher, error) {
	meta := MetaFor(id, src.Snapshot())
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := UnitTopic(meta.Model, id, MetaTopic)
	opts.SetBinaryWill(topicPrefix+metaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("phead:" + meta.Model + "/" + id)
	}
	p := &Publisher{
		Queue:    NewQueue(opts, topicPrefix),
		ID:       id,
		Source:   src,
		Interval: DefaultInterval,
		meta:     meta,
		metaJSON: metaJSON,
	}
	p.Queue.OnConnect = func(*Queue) { p.announce() }
	return p, nil
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "telemetry"
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	if token := p.Queue.Connect(); token.Wait() && token.Error() != nil {
		glog.Warningf("mqtt connect: %v", token.Error())
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishState()
		case <-ctx.Done():
			p.Queue.PubWith(p.topic(MetaTopic), nil, 1, true).WaitTimeout(time.Second)
			p.Queue.Close()
			return nil
		}
	}
}

// StateChanged implements comm.StateNotifier.
func (p *Publisher) StateChanged(ctx context.Context, state comm.LinkState) {
	p.lock.Lock()
	p.link = state
	p.lock.Unlock()
	p.publishState()
}

// StateMessage builds the current state message.
func (p *Publisher) StateMessage() *pb.DeviceState {
	p.lock.Lock()
	link := p.link
	p.lock.Unlock()
	return EncodeState(p.ID, link, p.Source.Snapshot(), time.Now())
}

func (p *Publisher) topic(suffix string) string {
	return UnitTopic(p.meta.Model, p.ID, suffix)
}

func (p *Publisher) announce() {
	p.Queue.PubWith(p.topic(MetaTopic), p.metaJSON, 1, true)
	p.publishState()
}

func (p *Publisher) publishState() {
	if !p.Queue.Client.IsConnected() {
		return
	}
	data, err := proto.Marshal(p.StateMessage())
	if err != nil {
		glog.Errorf("encode state: %v", err)
		return
	}
	p.Queue.Pub(p.topic(StateTopic), data)
}
