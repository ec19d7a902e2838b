package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

type printer struct {
	w    io.Writer
	json bool
}

func (p *printer) JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, string(b))
	return err
}

func (p *printer) Action(resp *model.ActionResponse) error {
	if p.json {
		return p.JSON(resp)
	}
	_, err := fmt.Fprintln(p.w, resp.Message)
	return err
}

func (p *printer) table(title string, headers []string, rows [][]string) {
	fmt.Fprintln(p.w, strings.ToUpper(title))
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintln(p.w)
}

func (p *printer) Status(s *model.StatusResponse) error {
	if p.json {
		return p.JSON(s)
	}

	nodeRows := make([][]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodeRows = append(nodeRows, []string{
			n.Name,
			ratio(n.CPUAllocated, n.AllocatableCPU),
			ratio(n.MemoryAllocated, n.AllocatableMemory),
			pct(n.CPUUtilizationPercent),
			pct(n.MemoryUtilizationPercent),
			strconv.Itoa(len(n.Pods)),
		})
	}
	p.table("nodes", []string{"NAME", "CPU", "MEMORY", "CPU%", "MEM%", "PODS"}, nodeRows)

	nsRows := make([][]string, 0, len(s.Namespaces))
	for _, ns := range s.Namespaces {
		nsRows = append(nsRows, []string{
			ns.Name,
			ratio(ns.CPUAllocated, ns.CPUQuota),
			ratio(ns.MemoryAllocated, ns.MemoryQuota),
			pct(ns.CPUQuotaUsedPercent),
			pct(ns.MemoryQuotaUsedPercent),
			strconv.Itoa(ns.DeploymentCount),
		})
	}
	p.table("namespaces", []string{"NAME", "CPU", "MEMORY", "CPU%", "MEM%", "DEPLOYMENTS"}, nsRows)

	depRows := make([][]string, 0, len(s.Deployments))
	for _, d := range s.Deployments {
		depRows = append(depRows, []string{
			d.Name,
			d.Namespace,
			fmt.Sprintf("%d/%d", d.RunningPods, d.ReplicaCount),
			num(d.CPURequestPerReplica),
			num(d.MemoryRequestPerReplica),
		})
	}
	p.table("deployments", []string{"NAME", "NAMESPACE", "READY", "CPU/REPLICA", "MEM/REPLICA"}, depRows)

	p.summaryTable(s.ClusterSummary)
	return nil
}

func (p *printer) Summary(s *model.ClusterSummary) error {
	if p.json {
		return p.JSON(s)
	}
	p.summaryTable(*s)
	return nil
}

func (p *printer) summaryTable(s model.ClusterSummary) {
	p.table("summary", []string{"RESOURCE", "CAPACITY", "ALLOCATABLE", "RESERVED", "ALLOCATED", "AVAILABLE"}, [][]string{
		{"cpu", num(s.TotalCPUCapacity), num(s.TotalAllocatableCPU), num(s.TotalReservedCPU), num(s.TotalCPUAllocated), num(s.TotalCPUAvailable)},
		{"memory", num(s.TotalMemoryCapacity), num(s.TotalAllocatableMemory), num(s.TotalReservedMemory), num(s.TotalMemoryAllocated), num(s.TotalMemoryAvailable)},
	})
	fmt.Fprintf(p.w, "nodes: %d  workload factor: %s\n", s.TotalNodes, pct(s.SimulatedWorkloadFactor*100))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func ratio(used, total float64) string {
	return num(used) + "/" + num(total)
}
