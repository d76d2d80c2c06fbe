// Package utils exposes reusable helpers consumed by the replayrig commands.
//
// It houses the ConfigurationLoader (Viper with embedded defaults, search
// paths and REPLAYRIG_ environment overrides), the LoggerFactory that builds
// zap loggers for terminal or file output, and the CommandContextAccessor
// that threads the configuration path and run identifier through Cobra
// command contexts.
package utils
