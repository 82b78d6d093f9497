package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the runtime settings that are not build-time constants.
type Settings struct {
	Device  DeviceSettings  `mapstructure:"device"`
	Scale   ScaleSettings   `mapstructure:"scale"`
	Logging LoggingSettings `mapstructure:"logging"`
	Runtime RuntimeSettings `mapstructure:"runtime"`
}

// DeviceSettings controls how the peripheral advertises itself.
type DeviceSettings struct {
	// Name is the advertised local name
	Name string `mapstructure:"name"`
	// ServiceUUID is the GATT service exposing the cue characteristic
	ServiceUUID string `mapstructure:"service_uuid"`
	// CharacteristicUUID is the single read/write/notify characteristic
	CharacteristicUUID string `mapstructure:"characteristic_uuid"`
	// Adapter is shown in the dashboard menu bar
	Adapter string `mapstructure:"adapter"`
}

// ScaleSettings selects where weight readings come from.
type ScaleSettings struct {
	// Source is "serial" for the HX711 bridge or "demo" for synthetic plates
	Source string `mapstructure:"source"`
	// Port is the serial device of the bridge
	Port string `mapstructure:"port"`
	// Baud is the bridge line speed
	Baud int `mapstructure:"baud"`
}

// LoggingSettings controls the diagnostic log.
type LoggingSettings struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level"`
	// File is the log destination; empty means stderr
	File string `mapstructure:"file"`
}

// RuntimeSettings holds process-level options.
type RuntimeSettings struct {
	// LockFile guards the BLE adapter against a second instance
	LockFile string `mapstructure:"lock_file"`
}

// Source values for ScaleSettings.Source.
const (
	SourceSerial = "serial"
	SourceDemo   = "demo"
)

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		Device: DeviceSettings{
			Name:               DeviceName,
			ServiceUUID:        ServiceUUID,
			CharacteristicUUID: CharacteristicUUID,
			Adapter:            "hci0",
		},
		Scale: ScaleSettings{
			Source: SourceSerial,
			Port:   "/dev/ttyUSB0",
			Baud:   DefaultBaudRate,
		},
		Logging: LoggingSettings{
			Level: "INFO",
		},
		Runtime: RuntimeSettings{
			LockFile: filepath.Join(os.TempDir(), "swing-plate.lock"),
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	d := Default()

	viper.SetDefault("device.name", d.Device.Name)
	viper.SetDefault("device.service_uuid", d.Device.ServiceUUID)
	viper.SetDefault("device.characteristic_uuid", d.Device.CharacteristicUUID)
	viper.SetDefault("device.adapter", d.Device.Adapter)

	viper.SetDefault("scale.source", d.Scale.Source)
	viper.SetDefault("scale.port", d.Scale.Port)
	viper.SetDefault("scale.baud", d.Scale.Baud)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.file", d.Logging.File)

	viper.SetDefault("runtime.lock_file", d.Runtime.LockFile)
}

// Init points viper at the config file and environment. An empty cfgFile
// searches the user config directory and the working directory.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SWING_PLATE")
	// SWING_PLATE_SCALE_PORT for scale.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine unless the user named one explicitly
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads the configuration from viper into Settings and validates it
func Load() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if errs := s.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &s, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "swing-plate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".swing-plate"
	}
	return filepath.Join(home, ".config", "swing-plate")
}
