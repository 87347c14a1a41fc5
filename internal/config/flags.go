package config

import (
	"flag"
)

// Flags binds the configuration flags to a StructuredConfig.
//
// The underlying *flag.FlagSet can be parsed directly or handed to another
// flag library (cobra's pflag can import it with AddGoFlagSet).
//
// Flags:
//
//	-root vault root directory
//	-d credential database DSN
//	-c/-config json file path with configs
//	-log-level log level (debug, info, warn, error)
//	-log-file log file path
type Flags struct {
	fs  *flag.FlagSet
	cfg StructuredConfig
}

// NewFlags registers the configuration flags on a new FlagSet named name.
func NewFlags(name string) *Flags {
	f := &Flags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}

	f.fs.StringVar(&f.cfg.Vault.RootDir, "root", "", "Vault root directory")
	f.fs.StringVar(&f.cfg.Storage.DB.DSN, "d", "", "Credential database DSN")
	f.fs.StringVar(&f.cfg.JSONFilePath, "c", "", "JSON config file path")
	f.fs.StringVar(&f.cfg.JSONFilePath, "config", "", "JSON config file path (alias)")
	f.fs.StringVar(&f.cfg.Log.Level, "log-level", "", "Log level")
	f.fs.StringVar(&f.cfg.Log.File, "log-file", "", "Log file path")

	return f
}

// FlagSet returns the underlying flag set.
func (f *Flags) FlagSet() *flag.FlagSet {
	return f.fs
}

// Parse parses args into the bound config.
func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// Config returns a copy of the values parsed so far.
func (f *Flags) Config() *StructuredConfig {
	cfg := f.cfg
	return &cfg
}
