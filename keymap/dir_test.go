package keymap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FugLong/miditohid/hid"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.txt", "FASTPRESS=0\nPRESS_DURATION=80\nSWITCH_NOTE=30\n")
	writeFile(t, dir, "WWM36_MAPPINGS.TXT", "60=H\r\n58=G\r\n")
	writeFile(t, dir, "my_game_mappings.txt", "36=SPACE\n")
	writeFile(t, dir, "README.md", "not a mapping file")
	writeFile(t, dir, "notes.txt", "60=H") // no MAPPINGS in the name

	cfg, sources, err := LoadDir(dir)
	require.NoError(t, err)

	require.False(t, cfg.FastPress)
	require.Equal(t, 80*time.Millisecond, cfg.PressDuration)
	require.Equal(t, uint8(30), cfg.SwitchNote)

	require.Len(t, sources, 2)
	require.Equal(t, "WWM36_MAPPINGS", sources[0].Name)
	require.Equal(t, "my_game_mappings", sources[1].Name)
	require.Equal(t, []string{"60=H", "58=G"}, sources[0].Lines)
}

func TestLoadDirMissing(t *testing.T) {
	cfg, sources, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Empty(t, sources)
}

func TestLoadEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "CONFIG.TXT", "PROFILE_SWITCH_NOTE=24\n")
	writeFile(t, dir, "A_MAPPINGS.TXT", "60=CTRL+C\n")
	writeFile(t, dir, "B_MAPPINGS.TXT", "60=LSHIFT\n")

	st, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, st.Count())
	require.Equal(t, hid.Mapping{Key: hid.KeyC, Mods: hid.ModLeftCtrl}, st.Active().Lookup(60))

	_, _, ok := st.SwitchNext()
	require.True(t, ok)
	require.Equal(t, hid.Mapping{Mods: hid.ModLeftShift}, st.Active().Lookup(60))
}
