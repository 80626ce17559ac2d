// Package mqtt publishes print-head telemetry over MQTT.
//
// Each unit retains a JSON Meta document at <prefix><model>/<id>/meta,
// cleared when it goes away, and publishes protobuf encoded DeviceState
// messages to <prefix><model>/<id>/state.
package mqtt
