package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func useDefault(log *logger.Logger, key string, def interface{}, raw string, err error) {
	if log == nil {
		return
	}
	if err != nil {
		log.Debug("Environment variable could not be parsed, using default", "env_var", key, "provided", raw, "default", def, "error", err)
		return
	}
	log.Debug("Environment variable not found, using default", "env_var", key, "default", def)
}

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string, log *logger.Logger) string {
	v, ok := lookup(key)
	if !ok {
		useDefault(log, key, def, "", nil)
		return def
	}
	return v
}

func Int(key string, def int, log *logger.Logger) int {
	v, ok := lookup(key)
	if !ok {
		useDefault(log, key, def, "", nil)
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		useDefault(log, key, def, v, err)
		return def
	}
	return i
}

func Float(key string, def float64, log *logger.Logger) float64 {
	v, ok := lookup(key)
	if !ok {
		useDefault(log, key, def, "", nil)
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		useDefault(log, key, def, v, err)
		return def
	}
	return f
}

// Bool accepts 1/true/yes/on and 0/false/no/off.
func Bool(key string, def bool, log *logger.Logger) bool {
	v, ok := lookup(key)
	if !ok {
		useDefault(log, key, def, "", nil)
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		useDefault(log, key, def, v, strconv.ErrSyntax)
		return def
	}
}

// Seconds reads an integer number of seconds as a duration.
func Seconds(key string, def time.Duration, log *logger.Logger) time.Duration {
	secs := Int(key, int(def/time.Second), log)
	if secs < 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
