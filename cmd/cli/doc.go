// Package cli constructs the brancho command-line interface, wiring the Cobra
// command hierarchy, the embedded default configuration, the Viper backed
// configuration loader and zap logging.
package cli
