package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/offersearch/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testCSV = `OFFER,RETAILER,BRAND,BRAND_BELONGS_TO_CATEGORY,RECEIPTS
10% off Acme snacks,Walmart,Acme,Snacks,10
Spend $20 on Globex soda,Target,Globex,Beverages,5
,Walmart,Initech,Snacks,1
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"offersearch"}, args...))
	return out.String(), err
}

func TestImportSearchInfo(t *testing.T) {
	dbDir := t.TempDir()
	csvPath := writeTemp(t, "offers.csv", testCSV)

	out, err := run(t, "--db", dbDir, "import", "--progress=false", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 rows")

	out, err = run(t, "--db", dbDir, "search", "-n", "1", "snacks")
	require.NoError(t, err)
	assert.Contains(t, out, "Tier: category, ranked by category")
	assert.Contains(t, out, "1: '10% off Acme snacks' (1)")
	assert.NotContains(t, out, "2: ")

	out, err = run(t, "--db", dbDir, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows:        3")
	assert.Contains(t, out, csvPath)
}

func TestSearch_Explain(t *testing.T) {
	dbDir := t.TempDir()
	_, err := run(t, "--db", dbDir, "import", "--progress=false", writeTemp(t, "offers.csv", testCSV))
	require.NoError(t, err)

	out, err := run(t, "--db", dbDir, "search", "--explain", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `Normalized: "zzzz"`)
	assert.Contains(t, out, "Tier category: 0 matching rows")
	assert.Contains(t, out, "Fallback chose")
	assert.Contains(t, out, "Tier: fallback")
}

func TestSearch_EmptyStore(t *testing.T) {
	_, err := run(t, "--db", t.TempDir(), "search", "snacks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run import first")
}

func TestInfo_EmptyStore(t *testing.T) {
	out, err := run(t, "--db", t.TempDir(), "info")
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshot stored")
}

func TestImport_Errors(t *testing.T) {
	_, err := run(t, "--db", "", "import", "offers.csv")
	assert.Error(t, err, "in-memory import is pointless")

	_, err = run(t, "--db", t.TempDir(), "import")
	assert.Error(t, err)

	bad := writeTemp(t, "bad.csv", "OFFER,BRAND\nx,y\n")
	_, err = run(t, "--db", t.TempDir(), "import", "--progress=false", bad)
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "--db", t.TempDir(), "info")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadConfig_Precedence(t *testing.T) {
	cfgPath := writeTemp(t, "config.yaml", `
listen_addr: ":7000"
default_limit: 3
cache_size: 50
read_timeout: 2s
`)

	var got *config.Config
	app := newApp()
	for _, cmd := range app.Commands {
		if cmd.Name == "serve" {
			cmd.Action = func(c *cli.Context) error {
				var err error
				got, err = loadConfig(c)
				return err
			}
		}
	}

	err := app.Run([]string{"offersearch", "--config", cfgPath, "--db", "", "serve",
		"--default-limit", "7", "--allowed-origin", "https://a.example", "--write-timeout", "9s"})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, ":7000", got.ListenAddr, "file overrides default")
	assert.Equal(t, 7, got.DefaultLimit, "flag overrides file")
	assert.Equal(t, 50, got.CacheSize)
	assert.Empty(t, got.DBPath)
	assert.Equal(t, []string{"https://a.example"}, got.AllowedOrigins)
	assert.Equal(t, 2*time.Second, got.ReadTimeout)
	assert.Equal(t, 9*time.Second, got.WriteTimeout)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OFFERSEARCH_CACHE_SIZE", "0")

	var got *config.Config
	app := newApp()
	for _, cmd := range app.Commands {
		if cmd.Name == "serve" {
			cmd.Action = func(c *cli.Context) error {
				var err error
				got, err = loadConfig(c)
				return err
			}
		}
	}

	require.NoError(t, app.Run([]string{"offersearch", "serve"}))
	require.NotNil(t, got)
	assert.Zero(t, got.CacheSize)
}
