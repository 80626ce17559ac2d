// Package v1 holds the wire messages published by print heads.
// Keep in sync with state.proto.
package v1

import (
	"github.com/golang/protobuf/proto"
)

// DeviceState is a periodic snapshot of a print head.
type DeviceState struct {
	ModelName      string `protobuf:"bytes,1,opt,name=model_name,json=modelName,proto3" json:"model_name,omitempty"`
	UnitId         string `protobuf:"bytes,2,opt,name=unit_id,json=unitId,proto3" json:"unit_id,omitempty"`
	LinkState      uint32 `protobuf:"varint,3,opt,name=link_state,json=linkState,proto3" json:"link_state,omitempty"`
	Speed          uint32 `protobuf:"varint,4,opt,name=speed,proto3" json:"speed,omitempty"`
	Temperature    uint32 `protobuf:"varint,5,opt,name=temperature,proto3" json:"temperature,omitempty"`
	Volume         uint32 `protobuf:"varint,6,opt,name=volume,proto3" json:"volume,omitempty"`
	UvIntensity    uint32 `protobuf:"varint,7,opt,name=uv_intensity,json=uvIntensity,proto3" json:"uv_intensity,omitempty"`
	UvMap          uint32 `protobuf:"varint,8,opt,name=uv_map,json=uvMap,proto3" json:"uv_map,omitempty"`
	PowerMode      uint32 `protobuf:"varint,9,opt,name=power_mode,json=powerMode,proto3" json:"power_mode,omitempty"`
	BatState       uint32 `protobuf:"varint,10,opt,name=bat_state,json=batState,proto3" json:"bat_state,omitempty"`
	BatLevel       uint32 `protobuf:"varint,11,opt,name=bat_level,json=batLevel,proto3" json:"bat_level,omitempty"`
	HasTemperature bool   `protobuf:"varint,12,opt,name=has_temperature,json=hasTemperature,proto3" json:"has_temperature,omitempty"`
	HasUv          bool   `protobuf:"varint,13,opt,name=has_uv,json=hasUv,proto3" json:"has_uv,omitempty"`
	Timestamp      int64  `protobuf:"varint,14,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// Reset implements proto.Message.
func (m *DeviceState) Reset() { *m = DeviceState{} }

// String implements proto.Message.
func (m *DeviceState) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*DeviceState) ProtoMessage() {}
