package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/sim2d/internal/component"
	"github.com/l1jgo/sim2d/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// Level is a tile grid plus the legend that maps tile codes to prefab names.
// Code 0 is always empty. Rows run top to bottom, +y down.
type Level struct {
	Name      string         `yaml:"name"`
	TileSize  float64        `yaml:"tile_size"`
	Legend    map[int]string `yaml:"legend"`
	Rows      [][]int        `yaml:"rows"`
	TilesFile string         `yaml:"tiles_file"` // CSV rows, relative to the level file; replaces Rows
}

// LoadLevel loads a level from YAML and, when tiles_file is set, its tile
// rows from a CSV text file next to it.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	var lv Level
	if err := yaml.Unmarshal(raw, &lv); err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	if lv.TilesFile != "" {
		rows, err := loadTileFile(filepath.Join(filepath.Dir(path), lv.TilesFile))
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", path, err)
		}
		lv.Rows = rows
	}
	if err := lv.Validate(); err != nil {
		return nil, err
	}
	return &lv, nil
}

// loadTileFile reads one row of comma-separated tile codes per line. Blank
// lines and lines starting with '#' are skipped; unparsable codes read as 0.
func loadTileFile(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tiles: %w", err)
	}
	defer f.Close()

	var rows [][]int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		toks := strings.Split(line, ",")
		row := make([]int, len(toks))
		for i, tok := range toks {
			v, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				v = 0
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

// Validate checks the tile size and that every non-zero code has a legend entry.
func (lv *Level) Validate() error {
	if lv.Name == "" {
		return fmt.Errorf("level: missing name")
	}
	if lv.TileSize <= 0 {
		return fmt.Errorf("level %s: tile_size must be positive", lv.Name)
	}
	for r, row := range lv.Rows {
		for c, code := range row {
			if code == 0 {
				continue
			}
			if _, ok := lv.Legend[code]; !ok {
				return fmt.Errorf("level %s: tile %d at col %d row %d has no legend entry", lv.Name, code, c, r)
			}
		}
	}
	return nil
}

// Width returns the length of the longest row.
func (lv *Level) Width() int {
	w := 0
	for _, row := range lv.Rows {
		w = max(w, len(row))
	}
	return w
}

func (lv *Level) Height() int { return len(lv.Rows) }

// At returns the tile code at (col, row), or 0 if out of bounds.
func (lv *Level) At(col, row int) int {
	if row < 0 || row >= len(lv.Rows) || col < 0 || col >= len(lv.Rows[row]) {
		return 0
	}
	return lv.Rows[row][col]
}

// TileCenter is the world position of a tile's center.
func (lv *Level) TileCenter(col, row int) mgl64.Vec2 {
	half := lv.TileSize / 2
	return mgl64.Vec2{float64(col)*lv.TileSize + half, float64(row)*lv.TileSize + half}
}

// Codes returns the distinct non-zero codes used, sorted.
func (lv *Level) Codes() []int {
	seen := make(map[int]struct{})
	for _, row := range lv.Rows {
		for _, code := range row {
			if code != 0 {
				seen[code] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Ints(out)
	return out
}

// Build instantiates every non-zero tile through the prefab registered on m
// under its legend name, and marks it with a component.Tile. Every prefab is
// checked before anything is spawned, so an unknown one leaves m untouched.
// If a prefab fails to build, the tiles spawned so far are destroyed and are
// purged by the next Update without ever going live. On success the spawned
// entities become live at the next Update.
func (lv *Level) Build(m *ecs.Manager) ([]*ecs.Entity, error) {
	if err := lv.Validate(); err != nil {
		return nil, err
	}
	registered := make(map[string]struct{})
	for _, name := range m.Prefabs() {
		registered[name] = struct{}{}
	}
	for _, code := range lv.Codes() {
		if _, ok := registered[lv.Legend[code]]; !ok {
			return nil, fmt.Errorf("level %s: tile %d: prefab %q: %w", lv.Name, code, lv.Legend[code], ecs.ErrUnknownPrefab)
		}
	}

	var out []*ecs.Entity
	for r, row := range lv.Rows {
		for c, code := range row {
			if code == 0 {
				continue
			}
			e, err := m.InstantiateNamed(lv.Legend[code], ecs.Spawn{Position: lv.TileCenter(c, r)})
			if err != nil {
				for _, spawned := range out {
					spawned.Destroy()
				}
				return nil, fmt.Errorf("level %s: tile %d at col %d row %d: %w", lv.Name, code, c, r, err)
			}
			ecs.Add(e, &component.Tile{Code: code, Col: c, Row: r})
			out = append(out, e)
		}
	}
	return out, nil
}
