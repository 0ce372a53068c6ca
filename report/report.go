// Package report renders port statistics in the monitoring plugin output
// format: a status line followed by performance data.
//
// The field names, their order and the unit suffixes are consumed by
// existing monitoring setups and must stay stable.
package report

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/swoga/tplink-check/model"
)

// LinkSpeedBytes converts the nominal megabit speed in integer steps, so 10Half
// (5 Mbit) reports 0 and 100Full reports 12000000.
func LinkSpeedBytes(status model.LinkStatus) uint64 {
	return status.SpeedMbit() / 8 * 1000 * 1000
}

func Render(stats *model.Statistics) string {
	connected := stats.Connected()
	total := len(stats.Ports)

	var b strings.Builder
	fmt.Fprintf(&b, "OK: ports connected: %d/%d |", connected, total)

	for _, port := range stats.Ports {
		n := port.PortNumber
		fmt.Fprintf(&b, " Port%dEnabled=%d", n, boolToInt(port.Enabled))
		fmt.Fprintf(&b, " Port%dLinkSpeed=%dB", n, LinkSpeedBytes(port.LinkStatus))
		fmt.Fprintf(&b, " Port%dGoodTX=%sc", n, counter(port.TxGoodPackets))
		fmt.Fprintf(&b, " Port%dBadTX=%sc", n, counter(port.TxBadPackets))
		fmt.Fprintf(&b, " Port%dGoodRX=%sc", n, counter(port.RxGoodPackets))
		fmt.Fprintf(&b, " Port%dBadRX=%sc", n, counter(port.RxBadPackets))
	}

	totals := stats.Totals()
	fmt.Fprintf(&b, " TotalGoodTX=%sc TotalBadTX=%sc TotalGoodRX=%sc TotalBadRX=%sc PortsConnected=%d TotalPorts=%d",
		counter(totals.TxGoodPackets), counter(totals.TxBadPackets), counter(totals.RxGoodPackets), counter(totals.RxBadPackets), connected, total)

	return b.String()
}

func counter(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
