// Package config defines the deployment parameters for the updater:
// the active symlink path, the releases directory, the platform target
// tuple and the mirror URL. Settings can be loaded from a YAML file and
// overridden by command line flags; the resulting Config is passed
// explicitly through every component and never mutated by the pipeline.
package config
