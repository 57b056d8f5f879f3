package config

// Default values for configuration options. These represent the "layer 0"
// of the four-layer override chain, chosen to match specification §6's
// stated defaults where one is given, and reasonable production values
// otherwise.
const (
	defaultRemotePort   = 22
	defaultConflict     = "newest"
	defaultMaxRetries   = 3
	defaultRetryDelay   = "2s"
	defaultSSHTimeout   = "10s"
	defaultRsyncTimeout = "5m"
	defaultBandwidth    = "0"
	defaultMaxFileSize  = "0"
	defaultMaxParallel  = 4
	defaultLogLevel     = "info"
	defaultLogFormat    = "auto"
)

// DefaultConfig returns a Config populated with all default values. Used
// both as the starting point for TOML decoding (so unset fields keep their
// defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		StateDir: DefaultStateDir(),
		Profiles: make(map[string]ProfileConfig),
		Transport: TransportConfig{
			RemotePort:     defaultRemotePort,
			MaxRetries:     defaultMaxRetries,
			RetryDelay:     defaultRetryDelay,
			SSHTimeout:     defaultSSHTimeout,
			RsyncTimeout:   defaultRsyncTimeout,
			BandwidthLimit: defaultBandwidth,
			MaxFileSize:    defaultMaxFileSize,
		},
		Sync: SyncConfig{
			ConflictStrategy:     defaultConflict,
			PropagateDeletes:     true,
			MaxParallelTransfers: defaultMaxParallel,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}
