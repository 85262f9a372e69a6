package main

import (
	"errors"
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/kongove/scylla-artifact-tests/api"
	"github.com/kongove/scylla-artifact-tests/database"
)

var ErrDatasourceNotLoaded = errors.New("could not load configuration: no database source specified")

// File is the yaml configuration file layout.
type File struct {
	Artifacts Config `yaml:"artifacts"`
}

// Config is the global configuration for the results server.
type Config struct {
	Database database.RegistrableComponentConfig
	API      *api.Config
}

func DefaultConfig() Config {
	return Config{
		Database: database.RegistrableComponentConfig{
			Type: "pgsql",
		},
		API: &api.Config{
			Port:       6060,
			HealthPort: 6061,
			Timeout:    900 * time.Second,
		},
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

	if config.Database.Type == "pgsql" {
		if source, _ := config.Database.Options["source"].(string); source == "" {
			err = ErrDatasourceNotLoaded
		}
	}
	return
}
