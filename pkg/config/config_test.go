package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"gotest.tools/assert"

	"github.com/Krajiyah/ble-services/pkg/gatt"
)

func writeTestConfig(t *testing.T, body string) (string, func()) {
	dir, err := ioutil.TempDir("", "ble-services")
	assert.NilError(t, err)
	path := filepath.Join(dir, CfgFilename)
	assert.NilError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path, func() { os.RemoveAll(dir) }
}

func noEnv(string) (string, bool) { return "", false }

func TestLoad(t *testing.T) {
	path, cleanup := writeTestConfig(t, `
name: porch-sensor
log_level: debug
poll_on_read: true
device_timeout: 3s
initial_level: 80
`)
	defer cleanup()
	cfg, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Name, "porch-sensor")
	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Assert(t, cfg.PollOnRead)
	assert.Assert(t, !cfg.WritableLevel)
	assert.Equal(t, cfg.DeviceTimeout, 3*time.Second)
	assert.Equal(t, cfg.InitialLevel, uint8(80))
	assert.DeepEqual(t, cfg.SensorConfig(), gatt.SensorConfig{PollOnRead: true, InitialLevel: 80})
	assert.DeepEqual(t, cfg.ActuatorConfig(), gatt.ActuatorConfig{PollOnRead: true})
}

func TestLoadMissingFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ble-services")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)
	cfg, err := Load(filepath.Join(dir, "absent.yml"))
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, DefaultConfig())
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "name: [",
		"bad log level": "log_level: chatty",
		"bad level":     "initial_level: 101",
		"no name":       "name: ' '",
		"bad timeout":   "device_timeout: 0s",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path, cleanup := writeTestConfig(t, body)
			defer cleanup()
			_, err := Load(path)
			assert.Assert(t, err != nil)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLESVC_NAME":           "env-name",
		"BLESVC_WRITABLE_LEVEL": "true",
		"BLESVC_DEVICE_TIMEOUT": "250ms",
		"BLESVC_INITIAL_LEVEL":  "12",
	}
	cfg := DefaultConfig()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.NilError(t, err)
	assert.Equal(t, cfg.Name, "env-name")
	assert.Assert(t, cfg.WritableLevel)
	assert.Equal(t, cfg.DeviceTimeout, 250*time.Millisecond)
	assert.Equal(t, cfg.InitialLevel, uint8(12))

	cfg = DefaultConfig()
	assert.NilError(t, cfg.applyEnv(noEnv))
	assert.DeepEqual(t, cfg, DefaultConfig())

	err = cfg.applyEnv(func(k string) (string, bool) {
		if k == "BLESVC_POLL_ON_READ" {
			return "sometimes", true
		}
		return "", false
	})
	assert.ErrorContains(t, err, "BLESVC_POLL_ON_READ")
}

func TestFields(t *testing.T) {
	cfg := DefaultConfig()
	fields := cfg.Fields()
	assert.Equal(t, fields["name"], "ble-services")
	assert.Equal(t, fields["device_timeout"], "10s")
	assert.Equal(t, fields["initial_level"], uint8(100))

	cfg.LogLevel = "warn"
	assert.NilError(t, cfg.ApplyLogLevel())
	assert.Equal(t, log.GetLevel(), log.WarnLevel)
	log.SetLevel(log.InfoLevel)
}
