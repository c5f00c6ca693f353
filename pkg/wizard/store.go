package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/wizardrunner/pkg/schema"
)

// Layout of a wizard directory, as written by the discovery collaborator:
//
//	<root>/wizard-structures/<wizard-id>.json
//	<root>/data-schemas/<wizard-id>-schema.json
const (
	structuresDir = "wizard-structures"
	schemasDir    = "data-schemas"
)

// Store reads wizard structures and their data schemas from a
// directory tree. It holds no state beyond the root path; every call
// reads from disk.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Info is the listing summary for one stored wizard.
type Info struct {
	WizardID string `json:"wizard_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Pages    int    `json:"total_pages"`
}

// List returns summaries for stored wizards whose id matches the glob
// pattern, sorted by id. An empty pattern matches everything. Files
// that fail to decode are skipped so one bad document does not hide
// the rest.
func (s *Store) List(pattern string) ([]Info, error) {
	dir := filepath.Join(s.root, structuresDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard directory %s: %w", dir, err)
	}

	var matcher glob.Glob
	if pattern != "" {
		matcher, err = glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid wizard id pattern %q: %w", pattern, err)
		}
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		structure, err := FromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if matcher != nil && !matcher.Match(structure.WizardID) {
			continue
		}
		infos = append(infos, Info{
			WizardID: structure.WizardID,
			Name:     structure.Name,
			URL:      structure.URL,
			Pages:    len(structure.Pages),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].WizardID < infos[j].WizardID })
	return infos, nil
}

// Get loads the structure for one wizard id.
func (s *Store) Get(wizardID string) (*Structure, error) {
	path := filepath.Join(s.root, structuresDir, wizardID+".json")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("wizard %q not found at %s: %w", wizardID, path, err)
	}
	return FromFile(path)
}

// SchemaFor loads the data schema for one wizard id.
func (s *Store) SchemaFor(wizardID string) (*schema.Schema, error) {
	path := filepath.Join(s.root, schemasDir, wizardID+"-schema.json")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("schema for wizard %q not found at %s: %w", wizardID, path, err)
	}
	return schema.Load(path)
}
