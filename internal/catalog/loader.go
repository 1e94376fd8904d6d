package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/drillbot/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrUnknownLanguage is returned when no curriculum file exists for the
// requested language.
var ErrUnknownLanguage = errors.New("catalog: unknown language")

// curriculumFile is the on-disk YAML shape of one language's curriculum.
type curriculumFile struct {
	Language   string                            `yaml:"language"`
	Name       string                            `yaml:"name"`
	Voice      string                            `yaml:"voice"`
	Levels     map[int]*levelFile                `yaml:"levels"`
	Challenges map[int]*models.ChallengeScenario `yaml:"challenges,omitempty"`
}

type levelFile struct {
	Phrases []models.Phrase `yaml:"phrases"`
	Frames  []models.Frame  `yaml:"frames"`
	Words   []models.Word   `yaml:"words"`
}

// Load reads the curriculum for one language from dir/<language>.yaml.
func Load(dir, language string) (*Catalog, error) {
	path := filepath.Join(dir, language+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
		}
		return nil, fmt.Errorf("failed to read curriculum %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a curriculum from YAML.
func Parse(data []byte) (*Catalog, error) {
	var file curriculumFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}

	cat := &Catalog{
		Language:   file.Language,
		Name:       file.Name,
		Voice:      file.Voice,
		levels:     make(map[int]*Level, len(file.Levels)),
		challenges: make(map[int]*models.ChallengeScenario, len(file.Challenges)),
	}
	for n, lvl := range file.Levels {
		if n < 1 {
			return nil, fmt.Errorf("curriculum %s: invalid level number %d", file.Language, n)
		}
		cat.levels[n] = &Level{
			Number:  n,
			Phrases: lvl.Phrases,
			Frames:  lvl.Frames,
			Words:   lvl.Words,
		}
	}
	for n, ch := range file.Challenges {
		ch.Level = n
		cat.challenges[n] = ch
	}
	cat.index()
	return cat, nil
}

// Info identifies an available language.
type Info struct {
	Language string
	Name     string
	Voice    string
}

// Languages scans dir for curriculum files and returns the available
// languages sorted by id.
func Languages(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		cat, err := Load(dir, id)
		if err != nil {
			return nil, err
		}
		name := cat.Name
		if name == "" {
			name = id
		}
		infos = append(infos, Info{Language: id, Name: name, Voice: cat.Voice})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Language < infos[j].Language })
	return infos, nil
}
