package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/harrisonrobin/trellotodo/pkg/routine"
)

const (
	xdgAppName = "trellotodo"
	configFile = "config.ini"
	envFile    = ".env"

	DefaultCalendarID = "primary"
	DefaultMaxResults = 10
)

// ErrMissingKey is returned when a required configuration value is absent.
var ErrMissingKey = errors.New("missing required config key")

// Trello holds the task board login and the names of the two lists the
// reconciliation works on.
type Trello struct {
	APIKey   string
	Secret   string
	BoardID  string
	Token    string
	TodoList string
	DoneList string
}

// Google holds the calendar side settings.
type Google struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
	MaxResults      int64
}

type Log struct {
	File  string
	Level string
}

type Config struct {
	Path    string
	Trello  Trello
	Google  Google
	Log     Log
	Routine routine.Routine
}

// Dir returns the directory holding the config file, client secrets and token cache.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, xdgAppName)
}

// StateDir returns the directory holding logs and run history.
func StateDir() string {
	return filepath.Join(xdg.StateHome, xdgAppName)
}

func GetConfigPath() string {
	return filepath.Join(Dir(), configFile)
}

// DefaultTokenFile is the token cache location used when the config does not name one.
func DefaultTokenFile() string {
	return filepath.Join(Dir(), "token.json")
}

// Load reads the INI file at path (the default location when empty). A
// .env file next to it may override the login values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s does not exist: %w", path, err)
		}
		return nil, err
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	env, err := readEnv(filepath.Join(filepath.Dir(path), envFile))
	if err != nil {
		return nil, err
	}

	cfg := &Config{Path: path}

	login := f.Section("login")
	lists := f.Section("lists")
	cfg.Trello = Trello{
		APIKey:   lookup(login, "api_key", env, "TRELLO_API_KEY"),
		Secret:   lookup(login, "trello_secret", env, "TRELLO_SECRET"),
		BoardID:  lookup(login, "bd_id", env, "TRELLO_BOARD_ID"),
		Token:    lookup(login, "token", env, "TRELLO_TOKEN"),
		TodoList: lists.Key("todo").String(),
		DoneList: lists.Key("done").String(),
	}

	required := []struct{ key, value string }{
		{"login.api_key", cfg.Trello.APIKey},
		{"login.trello_secret", cfg.Trello.Secret},
		{"login.bd_id", cfg.Trello.BoardID},
		{"login.token", cfg.Trello.Token},
		{"lists.todo", cfg.Trello.TodoList},
		{"lists.done", cfg.Trello.DoneList},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingKey, r.key, path)
		}
	}

	g := f.Section("google")
	cfg.Google = Google{
		CredentialsFile: g.Key("credentials").MustString(filepath.Join(Dir(), "credentials.json")),
		TokenFile:       g.Key("token").MustString(DefaultTokenFile()),
		CalendarID:      g.Key("calendar").MustString(DefaultCalendarID),
		MaxResults:      g.Key("max_results").MustInt64(DefaultMaxResults),
	}

	l := f.Section("log")
	cfg.Log = Log{
		File:  l.Key("file").MustString(filepath.Join(StateDir(), "trello_todo.log")),
		Level: l.Key("level").MustString("info"),
	}

	cfg.Routine, err = loadRoutine(f)
	if err != nil {
		return nil, fmt.Errorf("invalid [routine] in %s: %w", path, err)
	}
	return cfg, nil
}

func lookup(sec *ini.Section, key string, env map[string]string, envKey string) string {
	if v, ok := env[envKey]; ok && v != "" {
		return v
	}
	return sec.Key(key).String()
}

func readEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return env, nil
}

// loadRoutine starts from the built-in routine and replaces whatever the
// [routine] section sets. Keys other than everyday must name a weekday.
func loadRoutine(f *ini.File) (routine.Routine, error) {
	r := routine.Default()
	sec, err := f.GetSection("routine")
	if err != nil {
		return r, nil
	}
	for _, key := range sec.Keys() {
		if key.Name() == "everyday" {
			r.Everyday = splitList(key.String())
			continue
		}
		r.Weekly[key.Name()] = splitList(key.String())
	}
	return r, r.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WriteTemplate writes a config skeleton to path. An existing file is left alone.
func WriteTemplate(path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := ini.Empty()
	login := f.Section("login")
	for _, k := range []string{"api_key", "trello_secret", "bd_id", "token"} {
		login.Key(k).SetValue("")
	}
	lists := f.Section("lists")
	lists.Key("todo").SetValue("ToDo")
	lists.Key("done").SetValue("Done")

	out, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer out.Close()

	_, err = f.WriteTo(out)
	return err
}
