package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/ttpr0/stopfix/attr"
	"github.com/ttpr0/stopfix/resolve"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// config
//**********************************************************

// ReadConfig reads a yaml config file. A missing file yields the defaults.
func ReadConfig(file string) (Config, error) {
	config := DefaultConfig()
	if file == "" {
		return config, nil
	}
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults: " + file)
		return config, nil
	}
	if err != nil {
		return config, errors.Wrap(err, "read config file")
	}
	slog.Info("Reading config file " + file)
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(err, "failed to parse config file")
	}
	if config.MaxJunctionDistance < 0 {
		return config, errors.New("max-junction-distance must not be negative")
	}
	return config, nil
}

func DefaultConfig() Config {
	return Config{
		RoadClasses:         append([]RoadClass(nil), _DefaultRoadClasses()...),
		MaxJunctionDistance: 0,
		CheckOneway:         true,
		Report:              "",
	}
}

type Config struct {
	RoadClasses         []RoadClass `yaml:"road-classes"`
	MaxJunctionDistance float64     `yaml:"max-junction-distance"`
	CheckOneway         bool        `yaml:"check-oneway"`
	Report              string      `yaml:"report"`
}

func (self Config) RoadTypes() []attr.RoadType {
	types := make([]attr.RoadType, 0, len(self.RoadClasses))
	for _, class := range self.RoadClasses {
		types = append(types, attr.RoadType(class))
	}
	return types
}

func (self Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		MaxJunctionDistance: self.MaxJunctionDistance,
		CheckOneway:         self.CheckOneway,
	}
}

//**********************************************************
// road class
//**********************************************************

type RoadClass attr.RoadType

func _DefaultRoadClasses() []RoadClass {
	classes := make([]RoadClass, 0, len(attr.DEFAULT_ROAD_TYPES))
	for _, typ := range attr.DEFAULT_ROAD_TYPES {
		classes = append(classes, RoadClass(typ))
	}
	return classes
}

func (self RoadClass) String() string {
	return attr.RoadType(self).String()
}
func (self RoadClass) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *RoadClass) UnmarshalYAML(value *yaml.Node) error {
	typ := attr.RoadTypeFromString(value.Value)
	if typ == 0 {
		return errors.Errorf("unknown road class: %s", value.Value)
	}
	*self = RoadClass(typ)
	return nil
}
