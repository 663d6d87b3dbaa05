package plot

import (
	"sort"

	"github.com/yanqian/ecoplot/internal/domain/plant"
)

// AverageServices averages each service across the plot's plants, ignoring
// unmeasured entries per index. An index with no measured entry averages to 0.
func AverageServices(p Plot) [plant.ServiceCount]float64 {
	var (
		sums   [plant.ServiceCount]float64
		counts [plant.ServiceCount]int
		out    [plant.ServiceCount]float64
	)
	for _, rec := range p.Plants {
		for i, v := range rec.Services {
			if v == plant.Unmeasured {
				continue
			}
			sums[i] += v
			counts[i]++
		}
	}
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}

// RankByService keeps records with at least one positive service and orders
// them by the chosen service, highest first. Ties keep input order.
func RankByService(records []plant.Record, kind plant.ServiceKind) ([]plant.Record, error) {
	idx := kind.Index()
	if idx < 0 {
		return nil, plant.ErrInvalidServiceKind
	}
	ranked := make([]plant.Record, 0, len(records))
	for _, rec := range records {
		if rec.HasAnyPositiveService() {
			ranked = append(ranked, rec)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Services[idx] > ranked[j].Services[idx]
	})
	return ranked, nil
}
