package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
)

var (
	cfgFile = "termtactoe/config.json"
	logFile = "termtactoe/debug.log"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

// ConfigColors are 256-colour palette indexes used by the full-screen UI.
type ConfigColors struct {
	Circle    int `json:"circle" env-default:"109"`
	Cross     int `json:"cross" env-default:"216"`
	Empty     int `json:"empty" env-default:"240"`
	Highlight int `json:"highlight" env-default:"220"`
	Grid      int `json:"grid" env-default:"60"`
}

type ConfigSymbols struct {
	Circle string `json:"circle" env-default:"O"`
	Cross  string `json:"cross" env-default:"X"`
	Empty  string `json:"empty" env-default:"-"`
}

type Theme struct {
	Colors  ConfigColors  `json:"colors"`
	Symbols ConfigSymbols `json:"symbols"`
}

// Players holds the display names of player 0 (O) and player 1 (X).
type Players struct {
	One string `json:"one" env:"TERMTACTOE_PLAYER_ONE" env-default:"Player 1"`
	Two string `json:"two" env:"TERMTACTOE_PLAYER_TWO" env-default:"Player 2"`
}

type Config struct {
	Players            Players `json:"players"`
	Theme              Theme   `json:"theme"`
	ResultPauseSeconds int     `json:"result_pause_seconds" env:"TERMTACTOE_RESULT_PAUSE" env-default:"3"`
	LogLevel           string  `json:"log_level" env:"TERMTACTOE_LOG_LEVEL" env-default:"info"`
}

// InitConfig loads the user's config file when one exists. Missing values
// fall back to their defaults and TERMTACTOE_* variables override the file.
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		absPath = ""
	}
	return Load(absPath)
}

// Load reads the config at path, or only defaults and environment when path is empty.
func Load(path string) (*Config, error) {
	var config Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &config)
	} else {
		err = cleanenv.ReadEnv(&config)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	for _, s := range []string{c.Theme.Symbols.Circle, c.Theme.Symbols.Cross, c.Theme.Symbols.Empty} {
		if utf8.RuneCountInString(s) != 1 {
			return &InvalidConfig{fmt.Sprintf("Symbol %q must be a single character", s)}
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	for _, color := range []int{c.Theme.Colors.Circle, c.Theme.Colors.Cross, c.Theme.Colors.Empty, c.Theme.Colors.Highlight, c.Theme.Colors.Grid} {
		if color < 0 || color > 255 {
			return &InvalidConfig{fmt.Sprintf("Colour %d is outside the 256-colour palette", color)}
		}
	}
	if c.Players.One == "" || c.Players.Two == "" {
		return &InvalidConfig{"Player names must not be empty"}
	}
	if c.ResultPauseSeconds < 0 {
		return &InvalidConfig{"Result pause must not be negative"}
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return &InvalidConfig{fmt.Sprintf("Unknown log level %q", c.LogLevel)}
	}
	return nil
}

// PlayerNames returns the names in player order.
func (c *Config) PlayerNames() [2]string {
	return [2]string{c.Players.One, c.Players.Two}
}

func (c *Config) ResultPause() time.Duration {
	return time.Duration(c.ResultPauseSeconds) * time.Second
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel converts the configured log level.
func (c *Config) SlogLevel() slog.Level {
	return logLevels[c.LogLevel]
}

// LogFilePath returns the debug log location, creating its directory.
func LogFilePath() (string, error) {
	return xdg.CacheFile(logFile)
}

// Save writes the config to the user's config directory and returns the path.
func (c *Config) Save() (string, error) {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", fmt.Errorf("locate config file: %w", err)
	}
	return absPath, saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}
