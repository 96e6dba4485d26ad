// Package diskstat reports capacity of the volume holding the storage root.
package diskstat

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// Usage is a capacity snapshot of one volume.
type Usage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// Of returns the capacity of the volume containing path.
func Of(path string) (Usage, error) {
	st, err := disk.Usage(path)
	if err != nil {
		return Usage{}, fmt.Errorf("disk usage %s: %w", path, err)
	}
	return Usage{
		Path:        path,
		Total:       st.Total,
		Free:        st.Free,
		Used:        st.Used,
		UsedPercent: st.UsedPercent,
	}, nil
}
