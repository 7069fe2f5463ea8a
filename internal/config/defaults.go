package config

const (
	defaultIDMode          = "strict"
	defaultValidationLevel = "strict"
	defaultLabelFormat     = "compact"
	defaultLabelSize       = 256
	defaultLabelLevel      = "M"
	defaultSinkDriver      = "fs"
	defaultSinkFSRoot      = "./labeldata"
	defaultArchiveDriver   = "sqlite"
	defaultArchivePath     = "wols-archive.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ID: ID{
			Mode: defaultIDMode,
		},
		Validation: Validation{
			Level: defaultValidationLevel,
		},
		Label: Label{
			Format: defaultLabelFormat,
			Size:   defaultLabelSize,
			Level:  defaultLabelLevel,
		},
		Sink: Sink{
			Driver: defaultSinkDriver,
			FS: SinkFS{
				Root: defaultSinkFSRoot,
			},
		},
		Archive: Archive{
			Driver: defaultArchiveDriver,
			SQLite: ArchiveSQLite{
				Path: defaultArchivePath,
			},
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
