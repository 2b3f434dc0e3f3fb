// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apimodel "github.com/platform-engineering-labs/stackdeploy/internal/api/model"
	"github.com/platform-engineering-labs/stackdeploy/internal/util"
)

const (
	ConfigFileName  = "stackdeploy"
	ConfigFileType  = "yaml"
	ConfigDirectory = ".config/stackdeploy"
	DataDirectory   = ".pel/stackdeploy"
)

const (
	KeyURL         = "portainer-url"
	KeyUsername    = "portainer-username"
	KeyPassword    = "portainer-password"
	KeyStackName   = "stack-name"
	KeyServiceName = "service-name"
	KeyNewImage    = "new-image"
)

// EnvBindings maps every configuration key to the environment variable that
// can provide it.
var EnvBindings = map[string]string{
	KeyURL:         "PORTAINER_URL",
	KeyUsername:    "PORTAINER_USERNAME",
	KeyPassword:    "PORTAINER_PASSWORD",
	KeyStackName:   "STACK_NAME",
	KeyServiceName: "SERVICE_NAME",
	KeyNewImage:    "NEW_IMAGE",
}

var Config = cliconfig{}

type cliconfig struct{}

func (cliconfig) ConfigDirectory() string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homePath, ConfigDirectory)
}

func (cliconfig) DataDirectory() string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homePath, DataDirectory)
}

func (cliconfig) LogFilePath() string {
	return filepath.Join(Config.DataDirectory(), "log", "client.log")
}

func (cliconfig) EnsureConfigDirectory() error {
	configPath := Config.ConfigDirectory()
	if configPath == "" {
		return fmt.Errorf("failed to ensure stackdeploy config directory")
	}

	return os.MkdirAll(configPath, 0700)
}

func (cliconfig) EnsureDataDirectory() error {
	dataPath := Config.DataDirectory()
	if dataPath == "" {
		return fmt.Errorf("failed to ensure stackdeploy data directory")
	}

	return os.MkdirAll(dataPath, 0700)
}

// Connection holds what is needed to talk to the Portainer API.
type Connection struct {
	URL      string
	Username string
	Password string
}

// Deploy is the complete input of a deploy run. It is built once from flags,
// environment and config file and handed to every stage.
type Deploy struct {
	Connection

	StackName   string
	ServiceName string
	NewImage    string
	Env         []apimodel.EnvVar
	Verbose     bool
	DryRun      bool
}

// Loader resolves configuration keys. A flag set on the command line wins over
// the environment variable, which wins over the config file.
type Loader struct {
	v *viper.Viper
}

// NewLoader binds the keys present in flags to their flags and environment
// variables and reads the config file. An explicit configFile must exist; the
// default one is optional.
func NewLoader(flags *pflag.FlagSet, configFile string) (*Loader, error) {
	v := viper.New()

	for key, env := range EnvBindings {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
			}
		}
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(util.ExpandHomePath(configFile))
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(Config.ConfigDirectory())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Loader{v: v}, nil
}

func (l *Loader) String(key string) string {
	return strings.TrimSpace(l.v.GetString(key))
}

func (l *Loader) Connection() Connection {
	return Connection{
		URL:      util.TrimURL(l.String(KeyURL)),
		Username: l.String(KeyUsername),
		// passwords are taken verbatim
		Password: l.v.GetString(KeyPassword),
	}
}

// Missing returns the keys among keys that resolved to a blank value,
// formatted as "--flag (ENV_VAR)".
func (l *Loader) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(l.v.GetString(key)) == "" {
			missing = append(missing, fmt.Sprintf("--%s (%s)", key, EnvBindings[key]))
		}
	}
	return missing
}

func AddConnectionFlags(flags *pflag.FlagSet) {
	flags.String(KeyURL, "", "Portainer API URL, e.g. https://portainer.example.com/api")
	flags.String(KeyUsername, "", "Portainer username")
	flags.String(KeyPassword, "", "Portainer password")
}

// EnvUsage lists the environment variables behind keys, one per line.
func EnvUsage(keys ...string) string {
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("  %-20s--%s", EnvBindings[key], key))
	}

	return strings.Join(lines, "\n")
}
