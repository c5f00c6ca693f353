package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, structuresDir, "aid-estimator.json"), `{
		"wizard_id": "aid-estimator",
		"wizard_name": "Aid Estimator",
		"url": "https://example.gov/estimator/",
		"pages": [
			{
				"page_number": 1,
				"fields": [{"field_id": "name", "selector": "#name", "interaction": "fill"}],
				"continue_button": {"selector": "#next"}
			}
		]
	}`)

	writeFile(t, filepath.Join(root, structuresDir, "benefits-check.json"), `{
		"wizard_id": "benefits-check",
		"wizard_name": "Benefits Check",
		"url": "https://example.gov/benefits/",
		"pages": [
			{
				"page_number": 1,
				"fields": [],
				"continue_button": {"selector": "#next"}
			}
		]
	}`)

	// A corrupt document in the same directory must not break listing.
	writeFile(t, filepath.Join(root, structuresDir, "broken.json"), `{not json`)

	writeFile(t, filepath.Join(root, schemasDir, "aid-estimator-schema.json"), `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)

	return NewStore(root)
}

func TestStoreList_All(t *testing.T) {
	store := setupStore(t)

	infos, err := store.List("")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "aid-estimator", infos[0].WizardID)
	assert.Equal(t, "benefits-check", infos[1].WizardID)
	assert.Equal(t, 1, infos[0].Pages)
}

func TestStoreList_GlobPattern(t *testing.T) {
	store := setupStore(t)

	infos, err := store.List("aid-*")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "aid-estimator", infos[0].WizardID)
}

func TestStoreList_BadPattern(t *testing.T) {
	store := setupStore(t)

	_, err := store.List("[")
	assert.Error(t, err)
}

func TestStoreList_MissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))

	_, err := store.List("")
	assert.Error(t, err)
}

func TestStoreGet(t *testing.T) {
	store := setupStore(t)

	s, err := store.Get("aid-estimator")
	require.NoError(t, err)
	assert.Equal(t, "Aid Estimator", s.Name)

	_, err = store.Get("unknown-wizard")
	assert.Error(t, err)
}

func TestStoreSchemaFor(t *testing.T) {
	store := setupStore(t)

	s, err := store.SchemaFor("aid-estimator")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, s.Required)

	_, err = store.SchemaFor("benefits-check")
	assert.Error(t, err)
}
