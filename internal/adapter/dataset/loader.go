package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"exhibitrag/internal/domain"
)

// Loader discovers and decodes works-catalog files. Each catalog file holds
// one exhibit zone: a zone name plus the list of works shown there.
type Loader struct {
	includes []string
	excludes []string
}

// NewLoader creates a loader matching catalog files against the given glob
// patterns, relative to the data directory.
func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.yaml", "**/*.yml"}
	}
	return &Loader{
		includes: includes,
		excludes: excludes,
	}
}

type catalogFile struct {
	Zone  string        `yaml:"zone"`
	Works []domain.Work `yaml:"works"`
}

// Load reads every catalog file under root and returns the full corpus.
// Identifiers are assigned as "<zone>_<n>" in file order, so rebuilding from
// an unchanged catalog yields identical ids. Works without a name are
// skipped, matching how blank catalog rows are treated.
func (l *Loader) Load(root string) ([]domain.Work, error) {
	files, err := l.discover(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files found under %s", root)
	}

	// Counters are shared across files: two catalog files declaring the
	// same zone keep numbering where the previous one stopped, so ids
	// never collide.
	zoneCounts := make(map[string]int)

	var works []domain.Work
	for _, path := range files {
		zoneWorks, err := l.loadFile(path, zoneCounts)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		works = append(works, zoneWorks...)
	}

	return works, nil
}

func (l *Loader) loadFile(path string, zoneCounts map[string]int) ([]domain.Work, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cat catalogFile
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}

	zone := strings.TrimSpace(cat.Zone)
	if zone == "" {
		zone = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	works := make([]domain.Work, 0, len(cat.Works))
	n := zoneCounts[zone]
	for _, w := range cat.Works {
		if strings.TrimSpace(w.Name) == "" {
			continue
		}
		w.Zone = zone
		w.ID = fmt.Sprintf("%s_%d", zone, n)
		n++
		works = append(works, w)
	}
	zoneCounts[zone] = n

	return works, nil
}

// discover walks root and returns matching catalog paths in sorted order so
// id assignment is stable.
func (l *Loader) discover(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if l.shouldInclude(relPath) && !l.shouldExclude(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Loader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
