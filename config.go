package main

import (
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/kongove/scylla-artifact-tests/database"
	"github.com/kongove/scylla-artifact-tests/install"
)

// File is the yaml configuration file layout.
type File struct {
	Artifacts Config `yaml:"artifacts"`
}

// RemoteConfig selects a host to drive over SSH instead of the local one.
type RemoteConfig struct {
	Addr    string `yaml:"addr"`
	User    string `yaml:"user"`
	KeyPath string `yaml:"key"`
}

// Config is the global configuration for an artifact run.
type Config struct {
	// SwRepo is the URL of the repository file describing the artifacts
	// under test.
	SwRepo string `yaml:"swrepo"`

	// Mode selects between CI artifacts and a release train.
	Mode string `yaml:"mode"`

	// AMI switches to image verification: packages are expected to be
	// installed and tuned already.
	AMI bool `yaml:"ami"`

	// Enterprise marks enterprise version numbering for the image checks.
	Enterprise bool `yaml:"enterprise"`

	// ReportPath is where the HTML report is written. Empty disables it.
	ReportPath string `yaml:"report"`

	Remote RemoteConfig `yaml:"remote"`

	// Database persists run results when configured.
	Database *database.RegistrableComponentConfig `yaml:"database"`
}

func DefaultConfig() Config {
	return Config{
		Mode:       install.ModeCI,
		ReportPath: "scylla-artifacts-report.html",
	}
}

// LoadConfig reads the configuration file at path, falling back to defaults
// when path is empty.
func LoadConfig(path string) (config *Config, err error) {
	var cfgFile File
	cfgFile.Artifacts = DefaultConfig()
	if path == "" {
		return &cfgFile.Artifacts, nil
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return
	}
	defer f.Close()

	d, err := ioutil.ReadAll(f)
	if err != nil {
		return
	}

	err = yaml.Unmarshal(d, &cfgFile)
	if err != nil {
		return
	}
	config = &cfgFile.Artifacts
	return
}
