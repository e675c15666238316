package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"segkit/pkg/model"
)

func num(x float64) string { return strconv.FormatFloat(x, 'f', 4, 64) }

func pct(x float64) string { return strconv.FormatFloat(100*x, 'f', 2, 64) + "%" }

func writeVariance(w io.Writer, evr, cum []float64, kept int) {
	fmt.Fprintf(w, "\nPrincipal components (%d kept)\n", kept)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Component", "Explained", "Cumulative"})
	for i := range evr {
		table.Append([]string{strconv.Itoa(i + 1), pct(evr[i]), pct(cum[i])})
	}
	table.Render()
}

func writeWeights(w io.Writer, component int, weights model.Weights, n int) {
	top, bottom := weights.TopBottom(n)
	fmt.Fprintf(w, "\nComponent %d feature weights\n", component+1)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Feature", "Weight"})
	for i, fw := range top {
		table.Append([]string{strconv.Itoa(i + 1), fw.Feature, num(fw.Weight)})
	}
	for i, fw := range bottom {
		table.Append([]string{strconv.Itoa(len(weights) - len(bottom) + i + 1), fw.Feature, num(fw.Weight)})
	}
	table.Render()
}

func writeElbow(w io.Writer, pts []model.ElbowPoint) {
	fmt.Fprintln(w, "\nElbow sweep")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"K", "Inertia"})
	for _, p := range pts {
		table.Append([]string{strconv.Itoa(p.K), num(p.Inertia)})
	}
	table.Render()
}

func writeShares(w io.Writer, shares []model.ClusterShare) {
	fmt.Fprintln(w, "\nCluster proportions")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Cluster", "General", "Customers", "Difference"})
	for _, s := range shares {
		table.Append([]string{strconv.Itoa(s.Cluster), pct(s.General), pct(s.Customers), pct(s.Diff())})
	}
	table.Render()
}

func writeSearch(w io.Writer, res *model.SearchResult) {
	fmt.Fprintln(w, "\nGrid search (ROC AUC)")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Params", "Mean", "Folds"})
	for _, c := range res.Candidates {
		folds := ""
		for i, s := range c.FoldScores {
			if i > 0 {
				folds += " "
			}
			folds += num(s)
		}
		table.Append([]string{fmt.Sprint(c.Params), num(c.MeanScore), folds})
	}
	table.Render()
	fmt.Fprintf(w, "best: %v (%s)\n", res.Best, num(res.BestScore))
}
