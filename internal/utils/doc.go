// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// environment variables through Viper with mapstructure decode hooks.
// LoggerFactory builds the zap diagnostic and console loggers.
package utils
