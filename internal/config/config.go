package config

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	UploadConfig
	CorsConfig
	SecurityConfig
}

type mainConfig struct {
	EnvVars
	API
	Session
	Upload
	Cors
	Security
}

func New() Config {
	return mainConfig{}
}
