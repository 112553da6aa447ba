package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/sim2d/internal/data"
	"go.uber.org/zap"
)

// ErrLevelNotFound is returned by Load for an unknown level name.
var ErrLevelNotFound = errors.New("level not found")

// LevelInfo is a level's catalogue entry.
type LevelInfo struct {
	Name      string
	Width     int
	Height    int
	Revision  int
	UpdatedAt time.Time
}

// LevelRepo stores level definitions. Tiles are kept as one row-major
// int array; ragged rows are padded with empty tiles on save.
type LevelRepo struct {
	db *DB
}

func NewLevelRepo(db *DB) *LevelRepo {
	return &LevelRepo{db: db}
}

// Save inserts or replaces a level, bumping its revision.
func (r *LevelRepo) Save(ctx context.Context, lv *data.Level) error {
	if err := lv.Validate(); err != nil {
		return err
	}
	legend, err := json.Marshal(lv.Legend)
	if err != nil {
		return fmt.Errorf("marshal legend: %w", err)
	}
	w, h := lv.Width(), lv.Height()
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO levels (name, tile_size, width, height, tiles, legend)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE SET
		     tile_size = EXCLUDED.tile_size,
		     width = EXCLUDED.width,
		     height = EXCLUDED.height,
		     tiles = EXCLUDED.tiles,
		     legend = EXCLUDED.legend,
		     revision = levels.revision + 1,
		     updated_at = now()`,
		lv.Name, lv.TileSize, w, h, flattenTiles(lv.Rows, w), legend,
	)
	if err != nil {
		return fmt.Errorf("save level %s: %w", lv.Name, err)
	}
	r.db.log.Debug("level saved", zap.String("level", lv.Name), zap.Int("width", w), zap.Int("height", h))
	return nil
}

// Load returns the named level, or an error wrapping ErrLevelNotFound.
func (r *LevelRepo) Load(ctx context.Context, name string) (*data.Level, error) {
	var (
		lv     data.Level
		w, h   int
		tiles  []int32
		legend []byte
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, tile_size, width, height, tiles, legend FROM levels WHERE name = $1`, name,
	).Scan(&lv.Name, &lv.TileSize, &w, &h, &tiles, &legend)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	if err := json.Unmarshal(legend, &lv.Legend); err != nil {
		return nil, fmt.Errorf("level %s legend: %w", name, err)
	}
	lv.Rows, err = unflattenTiles(tiles, w, h)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	return &lv, nil
}

// List returns every stored level ordered by name.
func (r *LevelRepo) List(ctx context.Context) ([]LevelInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, width, height, revision, updated_at FROM levels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LevelInfo
	for rows.Next() {
		var li LevelInfo
		if err := rows.Scan(&li.Name, &li.Width, &li.Height, &li.Revision, &li.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, li)
	}
	return result, rows.Err()
}

// Delete removes a level. Deleting an unknown level is not an error.
func (r *LevelRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM levels WHERE name = $1`, name)
	return err
}

func flattenTiles(rows [][]int, width int) []int32 {
	out := make([]int32, len(rows)*width)
	for r, row := range rows {
		for c, code := range row {
			out[r*width+c] = int32(code)
		}
	}
	return out
}

func unflattenTiles(tiles []int32, width, height int) ([][]int, error) {
	if len(tiles) != width*height {
		return nil, fmt.Errorf("tile count %d does not match %dx%d", len(tiles), width, height)
	}
	rows := make([][]int, height)
	for r := range rows {
		rows[r] = make([]int, width)
		for c := range rows[r] {
			rows[r][c] = int(tiles[r*width+c])
		}
	}
	return rows, nil
}
