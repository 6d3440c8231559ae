package scenario

import (
	"fmt"

	"github.com/marmos91/cachesim/internal/bytesize"
	"github.com/marmos91/cachesim/pkg/coherence"
)

// LevelStats pairs one cache level's name, block size, and teardown
// statistics.
type LevelStats struct {
	Name      string            `json:"name" yaml:"name"`
	BlockSize bytesize.ByteSize `json:"block_size" yaml:"block_size"`
	Stats     coherence.Stats   `json:"stats" yaml:"stats"`
}

// Report is every level's teardown statistics, in declaration order.
// It implements internal/cli/output.TableRenderer so cmd/cachesim can
// print it directly.
type Report struct {
	Levels []LevelStats `json:"levels" yaml:"levels"`
}

// Headers implements output.TableRenderer.
func (r *Report) Headers() []string {
	return []string{"cache", "block size", "read hit", "read miss", "write hit", "write miss", "supply hit", "supply miss", "upgrade miss"}
}

// Rows implements output.TableRenderer.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Levels))
	for _, lvl := range r.Levels {
		s := lvl.Stats
		rows = append(rows, []string{
			lvl.Name,
			lvl.BlockSize.String(),
			fmt.Sprint(s.ReadHits), fmt.Sprint(s.ReadMisses),
			fmt.Sprint(s.WriteHits), fmt.Sprint(s.WriteMisses),
			fmt.Sprint(s.SupplyHits), fmt.Sprint(s.SupplyMisses),
			fmt.Sprint(s.UpgradeMisses),
		})
	}
	return rows
}
