// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recipe

import (
	"fmt"
	"path/filepath"
	"strconv"

	"golang.org/x/benchplot/benchlog"
	"golang.org/x/benchplot/chart"
)

// Handshake logs count completed handshakes per measurement window.
const handshakeWindow = 20 // seconds

// Default names the recipes run when none are selected.
var Default = []string{"batching-nocc", "batching"}

// Builtin returns the built-in recipes reading logs from dataDir.
func Builtin(dataDir string) []*Recipe {
	data := func(name string) string { return filepath.Join(dataDir, name) }

	variants := func(mk func(label, path string, column int) Item, format string, column int) []Item {
		return []Item{
			mk("nodpdk", data(fmt.Sprintf(format, "nodpdk")), column),
			mk("dpdk", data(fmt.Sprintf(format, "dpdk")), column),
		}
	}
	sweep := func(values []int, label, format string, column int) []Item {
		var items []Item
		for _, v := range values {
			s := strconv.Itoa(v)
			items = append(items, SeriesOf(fmt.Sprintf(label, s), data(fmt.Sprintf(format, s)), column))
		}
		return items
	}
	var queues []int
	for i := 1; i < 16; i++ {
		queues = append(queues, i)
	}
	handshake := func(label, path string, column int) Item {
		return ScaledSeriesOf(label, path, column, handshakeWindow)
	}

	return []*Recipe{
		{
			Name:   "throughput-bar",
			Title:  "Throughput comparison",
			YLabel: "Throughput(Mbps)",
			Output: "Throughput_bar.png",
			Kind:   chart.Bar,
			Items:  variants(AverageOf, "output_%s_tp_enc.txt", benchlog.ThroughputColumn),
		},
		{
			Name:   "throughput-box",
			Title:  "Throughput comparison",
			YLabel: "Throughput(Mbps)",
			Output: "Throughput_box.png",
			Kind:   chart.Box,
			Items:  variants(SeriesOf, "output_%s_tp_enc.txt", benchlog.ThroughputColumn),
		},
		{
			Name:   "handshake",
			Title:  "Handshake performance",
			YLabel: "Number of handshake completed (hz)",
			Output: "HandshakeComparison.png",
			Kind:   chart.Box,
			Items:  variants(handshake, "handshake_%s.txt", benchlog.RequestColumn),
		},
		{
			Name:   "server-scaling",
			Title:  "RSS analysis",
			YLabel: "individual throughput (Mbps)",
			Output: "server_scaling.png",
			Kind:   chart.Box,
			Items:  sweep(queues, "%s", "server_scaling_dpdk_%s.txt", benchlog.ThroughputColumn),
		},
		{
			Name:   "proxy-pkt-size",
			Title:  "Packet size impact",
			YLabel: "time elpased (s)",
			Output: "proxy_pkt_size.png",
			Kind:   chart.Box,
			Items:  sweep([]int{10, 100, 1000}, "payload_size : %s", "proxy_%s.txt", benchlog.ElapsedColumn),
		},
		{
			Name:   "noproxy-pkt-size",
			Title:  "Packet size impact without proxy",
			YLabel: "time elpased (s)",
			Output: "noproxy_pkt_size.png",
			Kind:   chart.Box,
			Items:  sweep([]int{10, 100, 1000}, "payload_size : %s", "noproxy_%s.txt", benchlog.ElapsedColumn),
		},
		{
			Name:   "batching-nocc",
			Title:  "Batching size impact on throughput",
			YLabel: "Throughput (Mbps)",
			Output: "batching_impact_noCC.png",
			Kind:   chart.Box,
			Items:  sweep([]int{4, 8, 16, 32, 64, 128}, "%s", "throughput_noCC_noPacing_%s_dpdk.txt", benchlog.ThroughputColumn),
		},
		{
			Name:   "batching",
			Title:  "Batching size impact on throughput",
			YLabel: "Throughput (Mbps)",
			Output: "batching_impact_withCC.png",
			Kind:   chart.Box,
			Items:  sweep([]int{4, 8, 16, 32, 64}, "%s", "throughput_%s_dpdk.txt", benchlog.ThroughputColumn),
		},
	}
}
