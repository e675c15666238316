package model

import "sort"

// ClusterShare compares the share of two populations assigned to a cluster.
type ClusterShare struct {
	Cluster   int
	General   float64
	Customers float64
}

// Diff is the customer share minus the general share; positive values mark
// clusters where customers are over-represented.
func (c ClusterShare) Diff() float64 { return c.Customers - c.General }

// ClusterProportions returns, for every cluster seen in either population,
// the fraction of each population assigned to it, sorted by cluster id.
func ClusterProportions(general, customers []int) []ClusterShare {
	byID := map[int]*ClusterShare{}
	get := func(k int) *ClusterShare {
		if s, ok := byID[k]; ok {
			return s
		}
		s := &ClusterShare{Cluster: k}
		byID[k] = s
		return s
	}
	for _, k := range general {
		get(k).General++
	}
	for _, k := range customers {
		get(k).Customers++
	}

	out := make([]ClusterShare, 0, len(byID))
	for _, s := range byID {
		if len(general) > 0 {
			s.General /= float64(len(general))
		}
		if len(customers) > 0 {
			s.Customers /= float64(len(customers))
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })
	return out
}
