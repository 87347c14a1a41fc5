package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func stubHome(t *testing.T, home string) {
	t.Helper()
	prev := userHomeDir
	userHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { userHomeDir = prev })
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no configs yields the
// defaults rooted at the home directory.
func TestBuild_EmptyBuilder(t *testing.T) {
	stubHome(t, "/home/alice")

	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)

	root := filepath.Join("/home/alice", DefaultRootDirName)
	assert.Equal(t, &StructuredConfig{
		Vault: Vault{
			RootDir:        root,
			NotesFile:      DefaultNotesFile,
			AttachmentsDir: DefaultAttachmentsDir,
		},
		Storage: Storage{DB: DB{DSN: filepath.Join(root, DefaultDBFile)}},
		Crypto:  Crypto{KDFIterations: DefaultKDFIterations},
		Log:     Log{File: filepath.Join(root, DefaultLogFile), Level: DefaultLogLevel},
	}, cfg)
	assert.Equal(t, filepath.Join(root, "attachments"), cfg.Vault.AttachmentsPath())
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_LaterSourcesOverride verifies that non-zero fields of later
// configs win while zero fields keep earlier values.
func TestBuild_LaterSourcesOverride(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			Vault: Vault{RootDir: "/env/root"},
			Log:   Log{Level: "debug"},
		},
		&StructuredConfig{
			Vault: Vault{RootDir: "/flag/root"},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "/flag/root", cfg.Vault.RootDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join("/flag/root", DefaultDBFile), cfg.Storage.DB.DSN)
}

// TestBuild_ValidationError verifies that an invalid merged config is
// returned together with the validation error.
func TestBuild_ValidationError(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		Vault: Vault{RootDir: "/r", NotesFile: "sub/notes.enc"},
	})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidVaultConfigs)
}

// ── withEnv ──────────────────────────────────────────────────────────────────

func TestWithEnv_AppendsOneConfig(t *testing.T) {
	clearEnvVars(t)
	b := newConfigBuilder().withEnv()
	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{"VAULT_ROOT_DIR": "/from/env"})

	b := newConfigBuilder().withEnv()
	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "/from/env", b.configs[0].Vault.RootDir)
}

func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	setEnvVars(t, map[string]string{"CRYPTO_KDF_ITERATIONS": "many"})

	b := newConfigBuilder().withEnv()
	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ────────────────────────────────────────────────────────────────

func TestWithFlags_NilIsNoop(t *testing.T) {
	b := newConfigBuilder().withFlags(nil)
	assert.Empty(t, b.configs)
}

func TestWithFlags_AppendsParsedValues(t *testing.T) {
	f := NewFlags("test")
	require.NoError(t, f.Parse([]string{"-root", "/from/flags"}))

	b := newConfigBuilder().withFlags(f)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "/from/flags", b.configs[0].Vault.RootDir)
}

// ── withJSON ─────────────────────────────────────────────────────────────────

// TestWithJSON_NoOp_WhenNoPathSet verifies that withJSON does nothing when
// no config has a JSONFilePath.
func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithJSON_AppendsConfig_WhenValidFile verifies that a valid JSON file is
// parsed and appended.
func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.Vault.RootDir = "/json/root"
	payload.Crypto.KDFIterations = 20000
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "/json/root", b.configs[1].Vault.RootDir)
	assert.Equal(t, 20000, b.configs[1].Crypto.KDFIterations)
}

// TestWithJSON_SetsError_WhenFileNotFound verifies that a missing file path
// sets b.err.
func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		JSONFilePath: "/nonexistent/config.json",
	})
	b.withJSON()

	assert.Error(t, b.err)
}

// TestWithJSON_SetsError_WhenMalformedJSON verifies that invalid JSON content
// sets b.err.
func TestWithJSON_SetsError_WhenMalformedJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad-*.json")
	require.NoError(t, err)
	_, err = f.WriteString("{not valid json")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: f.Name()})
	b.withJSON()

	assert.Error(t, b.err)
}

// TestWithJSON_UsesLastPath verifies that when multiple configs have a
// JSONFilePath, the last non-empty one wins.
func TestWithJSON_UsesLastPath(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.Log.Level = "warn"
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{JSONFilePath: "/nonexistent/first.json"},
		&StructuredConfig{JSONFilePath: path},
	)
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "warn", b.configs[2].Log.Level)
}

// TestGetStructuredConfig_AllSources verifies priority env < flags < JSON.
func TestGetStructuredConfig_AllSources(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.Log.Level = "error"
	path := writeTempJSONConfig(t, payload)

	setEnvVars(t, map[string]string{
		"VAULT_ROOT_DIR":        "/env/root",
		"LOG_LEVEL":             "debug",
		"CRYPTO_KDF_ITERATIONS": "12000",
	})

	f := NewFlags("test")
	require.NoError(t, f.Parse([]string{"-root", "/flag/root", "-config", path}))

	cfg, err := GetStructuredConfig(f)
	require.NoError(t, err)

	assert.Equal(t, "/flag/root", cfg.Vault.RootDir)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 12000, cfg.Crypto.KDFIterations)
	assert.Equal(t, path, cfg.JSONFilePath)
}
