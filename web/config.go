package web

import (
	"github.com/esplab/esprig/esp01"
	"github.com/esplab/esprig/rig"
	"github.com/rkjdid/util"
	"go.bug.st/serial.v1"
)

var DefaultConfig = Config{
	Meter:  "PPK2",
	Shunt:  util.Float(0),
	Esp:    esp01.DefaultConfig,
	Rig:    rig.DefaultConfig,
	Tracer: rig.DefaultTracerConfig,
	Web:    DefaultServerConfig,
	Serial: *esp01.DefaultSerialConfig,
}

type Config struct {
	Meter  string     // measurement device hooked on the rig, informational
	Shunt  util.Float // shunt resistance in ohm, informational
	Esp    esp01.Config
	Rig    rig.Config
	Tracer rig.TracerConfig
	Web    ServerConfig
	Device string
	Serial serial.Mode
}
