package config

import "os"

// Environment variable names for overrides, following the teacher
// project's ONEDRIVE_GO_* naming convention renamed to this project's
// prefix.
const (
	EnvConfig  = "RSYNC_SYNC_CONFIG"
	EnvProfile = "RSYNC_SYNC_PROFILE"
)

// EnvOverrides holds values derived from environment variables. These do
// not modify a Config directly; Resolve applies the relevant fields.
type EnvOverrides struct {
	ConfigPath string
	Profile    string
}

// ReadEnvOverrides reads the recognized environment variables.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Profile:    os.Getenv(EnvProfile),
	}
}
