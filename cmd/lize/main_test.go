package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

func setupCLI(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LIZE_HOME", home)
	t.Setenv("LIZE_SQLITE_PATH", filepath.Join(home, "lize.db"))
	t.Setenv("LIZE_LOG_LEVEL", "error")
	t.Setenv("LIZE_USER_ID", "cli_user")
	t.Chdir(t.TempDir())
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func runErr(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func readTree(t *testing.T) treeUser {
	t.Helper()
	var tu treeUser
	require.NoError(t, json.Unmarshal([]byte(run(t, "tree", "--format", "json")), &tu))
	return tu
}

func findAmbito(t *testing.T, tu treeUser, name string) treeAmbito {
	t.Helper()
	for _, a := range tu.Ambitos {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("ambito %s not in tree", name)
	return treeAmbito{}
}

func TestCLI_RequiresInit(t *testing.T) {
	setupCLI(t)

	err := runErr(t, "tree", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lize init")
}

func TestCLI_InitIsIdempotent(t *testing.T) {
	setupCLI(t)

	assert.Contains(t, run(t, "init"), "User cli_user created.")
	assert.Contains(t, run(t, "init"), "User cli_user already exists.")

	tu := readTree(t)
	assert.Equal(t, "cli_user", tu.ID)
	require.Len(t, tu.Ambitos, 1)
	assert.Equal(t, model.DefaultAmbitoName, tu.Ambitos[0].Name)
	assert.Equal(t, "Purple", tu.Ambitos[0].Color)

	assert.Contains(t, run(t, "status"), "Store sqlite is healthy.")
}

func TestCLI_NoteLifecycle(t *testing.T) {
	setupCLI(t)
	run(t, "init")
	run(t, "ambito", "add", "Work", "--color", "teal")

	img := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o600))

	id := strings.TrimSpace(run(t, "note", "add", "-a", "Work", "-f", "Ideas", "-t", "First", "--text", "hello", "--image", img))
	require.NotEmpty(t, id)

	work := findAmbito(t, readTree(t), "Work")
	assert.Equal(t, "Teal", work.Color)
	require.Len(t, work.Folders, 1)
	assert.Equal(t, "Ideas", work.Folders[0].Name)
	require.Len(t, work.Folders[0].Notes, 1)
	assert.Equal(t, id, work.Folders[0].Notes[0].ID)
	assert.Equal(t, []string{"images"}, work.Folders[0].Notes[0].Media)

	dupID := strings.TrimSpace(run(t, "note", "cp", id))
	require.NotEqual(t, id, dupID)
	work = findAmbito(t, readTree(t), "Work")
	require.Len(t, work.Folders, 1)
	assert.Len(t, work.Folders[0].Notes, 2)

	run(t, "note", "mv", dupID, "--to", model.DefaultAmbitoName)
	personal := findAmbito(t, readTree(t), model.DefaultAmbitoName)
	require.Len(t, personal.Notes, 1)
	assert.Equal(t, dupID, personal.Notes[0].ID)
	assert.Equal(t, []string{"images"}, personal.Notes[0].Media)

	run(t, "folder", "rm", "Ideas", "-a", "Work")
	work = findAmbito(t, readTree(t), "Work")
	assert.Empty(t, work.Folders)
	assert.Empty(t, work.Notes)
}

func TestCLI_AmbitoEditAndRemove(t *testing.T) {
	setupCLI(t)
	run(t, "init")
	run(t, "ambito", "add", "Home")
	run(t, "ambito", "edit", "Home", "--name", "House")
	run(t, "ambito", "move", "House", "0")

	tu := readTree(t)
	require.Len(t, tu.Ambitos, 2)
	assert.Equal(t, "House", tu.Ambitos[0].Name)

	run(t, "ambito", "rm", "House")
	tu = readTree(t)
	require.Len(t, tu.Ambitos, 1)
	assert.Equal(t, model.DefaultAmbitoName, tu.Ambitos[0].Name)

	err := runErr(t, "ambito", "add", "fourteen chars")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("3")
	require.NoError(t, err)
	assert.Equal(t, 3, c)

	c, err = parseColor("GREEN")
	require.NoError(t, err)
	assert.Equal(t, 5, c)

	_, err = parseColor("mauve")
	assert.Error(t, err)
}

func TestRenderTree(t *testing.T) {
	u := &model.User{ID: "u1", Name: "Ada", Mail: "ada@example.com"}
	amb := model.NewAmbito("Work", 0)
	amb.SetID("a1")
	u.AddAmbito(amb)
	tagged := model.NewNote("Plan", "p", "<p>p</p>")
	tagged.SetTag("Ideas")
	amb.AddNote(tagged)
	amb.AddNote(model.NewNote("Loose", "l", "<p>l</p>"))

	var buf bytes.Buffer
	require.NoError(t, renderTree(&buf, u, "yaml"))
	out := buf.String()
	assert.Contains(t, out, "name: Work")
	assert.Contains(t, out, "color: Red")
	assert.Contains(t, out, "name: Ideas")
	assert.Contains(t, out, "title: Plan")
	assert.Contains(t, out, "title: Loose")

	buf.Reset()
	require.NoError(t, renderTree(&buf, u, "json"))
	var tu treeUser
	require.NoError(t, json.Unmarshal(buf.Bytes(), &tu))
	require.Len(t, tu.Ambitos, 1)
	require.Len(t, tu.Ambitos[0].Folders, 1)
	assert.Equal(t, "Plan", tu.Ambitos[0].Folders[0].Notes[0].Title)
	require.Len(t, tu.Ambitos[0].Notes, 1)
	assert.Equal(t, "Loose", tu.Ambitos[0].Notes[0].Title)

	assert.Error(t, renderTree(&buf, u, "toml"))
}
