package simulation

import (
	"github.com/intelliguard-io/intelliguard/internal/core/domain"
)

// DeviceProfile is one entry of the static device catalog. The catalog is
// read-only input to the generator; profiles are never mutated at runtime.
type DeviceProfile struct {
	ID        string
	Type      string
	Protocols []domain.Protocol
}

// Fixed fleet of 20 simulated IoT devices
var catalog = []DeviceProfile{
	{ID: "cam_01", Type: "SmartCam", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolUDP}},
	{ID: "cam_02", Type: "SmartCam", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolUDP}},
	{ID: "thermo_01", Type: "Thermostat", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolCoAP}},
	{ID: "thermo_02", Type: "Thermostat", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolHTTP}},
	{ID: "door_01", Type: "DoorSensor", Protocols: []domain.Protocol{domain.ProtocolCoAP, domain.ProtocolUDP}},
	{ID: "door_02", Type: "DoorSensor", Protocols: []domain.Protocol{domain.ProtocolCoAP, domain.ProtocolMQTT}},
	{ID: "plug_01", Type: "SmartPlug", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolHTTP}},
	{ID: "plug_02", Type: "SmartPlug", Protocols: []domain.Protocol{domain.ProtocolMQTT}},
	{ID: "light_01", Type: "SmartLight", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolHTTP}},
	{ID: "light_02", Type: "SmartLight", Protocols: []domain.Protocol{domain.ProtocolMQTT}},
	{ID: "weather_01", Type: "WeatherNode", Protocols: []domain.Protocol{domain.ProtocolUDP, domain.ProtocolCoAP}},
	{ID: "ind_01", Type: "IndustrialSensor", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolUDP}},
	{ID: "ind_02", Type: "IndustrialSensor", Protocols: []domain.Protocol{domain.ProtocolMQTT}},
	{ID: "lock_01", Type: "DoorLock", Protocols: []domain.Protocol{domain.ProtocolCoAP, domain.ProtocolHTTP}},
	{ID: "lock_02", Type: "DoorLock", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolCoAP}},
	{ID: "meter_01", Type: "EnergyMeter", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolHTTP}},
	{ID: "meter_02", Type: "EnergyMeter", Protocols: []domain.Protocol{domain.ProtocolCoAP}},
	{ID: "alarm_01", Type: "FireAlarm", Protocols: []domain.Protocol{domain.ProtocolMQTT, domain.ProtocolUDP}},
	{ID: "alarm_02", Type: "FireAlarm", Protocols: []domain.Protocol{domain.ProtocolCoAP}},
	{ID: "router_01", Type: "Router", Protocols: []domain.Protocol{domain.ProtocolHTTP, domain.ProtocolUDP}},
}

// Bandwidth tiers by device type; anything unlisted falls in the middle tier
var highBandwidth = map[string]bool{
	"SmartCam":         true,
	"IndustrialSensor": true,
	"Router":           true,
}

var lowBandwidth = map[string]bool{
	"Thermostat": true,
	"SmartPlug":  true,
	"SmartLight": true,
}

// Catalog returns a copy of the simulated device fleet.
func Catalog() []DeviceProfile {
	out := make([]DeviceProfile, len(catalog))
	copy(out, catalog)
	return out
}
