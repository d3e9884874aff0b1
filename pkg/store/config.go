package store

import (
	"errors"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
)

type Config interface {
	BasePath() string
	Backend() string
}

// FileConfig is the resolved contents of .barely.yaml and BARELY_* env vars.
type FileConfig struct {
	Path        string `json:"path"`
	Driver      string `json:"backend"`
	LogLevel    string `json:"logLevel"`
	UndoLimit   int    `json:"undoLimit"`
	PickerLimit int    `json:"pickerLimit"`
}

func (f *FileConfig) BasePath() string {
	return f.Path
}

func (f *FileConfig) Backend() string {
	return f.Driver
}

func LoadConfig() (*FileConfig, error) {
	v := viper.New()
	v.SetDefault("path", "~/.barely")
	v.SetDefault("backend", BackendDiskv)
	v.SetDefault("log.level", "warn")
	v.SetDefault("undo.limit", 10)
	v.SetDefault("picker.limit", 20)
	v.SetConfigName(".barely") // .yaml is implicit
	v.SetEnvPrefix("BARELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("BARELY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, err
	}
	return &FileConfig{
		Path:        path,
		Driver:      v.GetString("backend"),
		LogLevel:    v.GetString("log.level"),
		UndoLimit:   v.GetInt("undo.limit"),
		PickerLimit: v.GetInt("picker.limit"),
	}, nil
}
