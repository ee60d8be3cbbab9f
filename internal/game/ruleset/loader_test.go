package ruleset_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/titan/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadCatalog_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "core.yaml"), `
attributes:
  - id: body
    name: Body
  - id: mind
    name: Mind
skills:
  - id: meleeWeapons
    name: "Melee Weapons"
    attribute: body
resistances:
  - id: reflexes
    name: Reflexes
`)
	writeFile(t, filepath.Join(dir, "weapons.yml"), `
attacks:
  - id: longsword
    name: "Longsword"
    type: melee
    range: close
    attribute: body
    skill: meleeWeapons
    damage: 2
    plus_success_damage: true
    traits:
      - slashing
      - twoHanded
`)
	writeFile(t, filepath.Join(dir, "README.md"), "ignored")

	cat, err := ruleset.LoadCatalog(dir)
	require.NoError(t, err)

	attrs, skills, res, attacks := cat.Counts()
	assert.Equal(t, 2, attrs)
	assert.Equal(t, 1, skills)
	assert.Equal(t, 1, res)
	assert.Equal(t, 1, attacks)

	s, ok := cat.Skill("meleeWeapons")
	require.True(t, ok)
	assert.Equal(t, "body", s.Attribute)

	a, ok := cat.Attack("longsword")
	require.True(t, ok)
	assert.Equal(t, ruleset.AttackMelee, a.Type)
	assert.Equal(t, 2, a.Damage)
	assert.True(t, a.PlusSuccessDamage)
}

func TestLoadCatalog_NullEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "core.yaml"), "attributes:\n  -\n  - id: body\nskills:\n  -\n")

	var err error
	require.NotPanics(t, func() { _, err = ruleset.LoadCatalog(dir) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null attribute entry at index 0")
	assert.Contains(t, err.Error(), "null skill entry at index 0")
}

func TestLoadCatalog_NullEntryInEveryList(t *testing.T) {
	for _, list := range []string{"attributes", "skills", "resistances", "attacks"} {
		t.Run(list, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "core.yaml"), list+":\n  -\n")
			var err error
			require.NotPanics(t, func() { _, err = ruleset.LoadCatalog(dir) })
			assert.ErrorContains(t, err, "null")
		})
	}
}

func TestLoadCatalog_AttackType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "core.yaml"), `
attributes:
  - id: body
skills:
  - id: meleeWeapons
attacks:
  - id: fist
    attribute: body
    skill: meleeWeapons
`)
	cat, err := ruleset.LoadCatalog(dir)
	require.NoError(t, err)
	a, ok := cat.Attack("fist")
	require.True(t, ok)
	assert.Equal(t, ruleset.AttackMelee, a.Type, "empty type reads as melee")

	writeFile(t, filepath.Join(dir, "core.yaml"), `
attributes:
  - id: body
skills:
  - id: meleeWeapons
attacks:
  - id: fist
    type: psychic
    attribute: body
    skill: meleeWeapons
`)
	_, err = ruleset.LoadCatalog(dir)
	assert.ErrorContains(t, err, `attack "fist" has unknown type "psychic"`)
}

func TestLoadCatalog_EmptyDir(t *testing.T) {
	cat, err := ruleset.LoadCatalog(t.TempDir())
	require.NoError(t, err)
	attrs, skills, res, attacks := cat.Counts()
	assert.Zero(t, attrs+skills+res+attacks)
}

func TestLoadCatalog_MissingDir(t *testing.T) {
	_, err := ruleset.LoadCatalog(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadCatalog_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), "attributes: [unterminated")
	_, err := ruleset.LoadCatalog(dir)
	assert.Error(t, err)
}

func TestLoadCatalog_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "attributes:\n  - id: body\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "attributes:\n  - id: body\n")
	_, err := ruleset.LoadCatalog(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate attribute "body"`)
}

func TestLoadCatalogOrDefault_EmptyDirUsesCore(t *testing.T) {
	cat, err := ruleset.LoadCatalogOrDefault("")
	require.NoError(t, err)
	_, ok := cat.Resistance(ruleset.Willpower)
	assert.True(t, ok)
}

// TestLoadCatalog_AttributeCount_Property verifies every attribute written to
// disk is indexed, regardless of how many files it is spread across.
func TestLoadCatalog_AttributeCount_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		files := rapid.IntRange(1, 5).Draw(rt, "files")
		perFile := rapid.IntRange(0, 5).Draw(rt, "perFile")
		dir, err := os.MkdirTemp("", "ruleset")
		require.NoError(rt, err)
		defer os.RemoveAll(dir)

		for f := 0; f < files; f++ {
			body := "attributes:\n"
			for i := 0; i < perFile; i++ {
				body += fmt.Sprintf("  - id: attr_%d_%d\n", f, i)
			}
			if perFile == 0 {
				body = "attributes: []\n"
			}
			require.NoError(rt, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.yaml", f)), []byte(body), 0644))
		}

		cat, err := ruleset.LoadCatalog(dir)
		require.NoError(rt, err)
		attrs, _, _, _ := cat.Counts()
		assert.Equal(rt, files*perFile, attrs)
	})
}
