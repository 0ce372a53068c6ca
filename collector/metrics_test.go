package collector

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/swoga/tplink-check/model"
)

func testStatistics() model.Statistics {
	return model.Statistics{Ports: []model.PortStatistic{
		{
			PortNumber:    1,
			Enabled:       true,
			LinkStatus:    model.Link1000Full,
			TxGoodPackets: big.NewInt(208626),
			TxBadPackets:  big.NewInt(0),
			RxGoodPackets: big.NewInt(59405),
			RxBadPackets:  big.NewInt(2),
		},
		{
			PortNumber:    2,
			Enabled:       false,
			LinkStatus:    model.LinkDown,
			TxGoodPackets: big.NewInt(11),
			TxBadPackets:  big.NewInt(0),
			RxGoodPackets: big.NewInt(0),
			RxBadPackets:  big.NewInt(0),
		},
	}}
}

func TestAddMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, AddMetrics(registry, testStatistics()))

	expected := `
# HELP port_enabled Whether the port is administratively enabled.
# TYPE port_enabled gauge
port_enabled{port="1"} 1
port_enabled{port="2"} 0
# HELP port_link_speed_bytes Nominal link speed as reported in the plugin output.
# TYPE port_link_speed_bytes gauge
port_link_speed_bytes{port="1"} 1.25e+08
port_link_speed_bytes{port="2"} 0
# HELP port_link_status Link status label of the port, always 1.
# TYPE port_link_status gauge
port_link_status{port="1",status="1000Full"} 1
port_link_status{port="2",status="Link Down"} 1
# HELP port_link_up Whether the port has an established link.
# TYPE port_link_up gauge
port_link_up{port="1"} 1
port_link_up{port="2"} 0
# HELP port_rx_good_packets_total Good packets received.
# TYPE port_rx_good_packets_total counter
port_rx_good_packets_total{port="1"} 59405
port_rx_good_packets_total{port="2"} 0
# HELP port_tx_good_packets_total Good packets transmitted.
# TYPE port_tx_good_packets_total counter
port_tx_good_packets_total{port="1"} 208626
port_tx_good_packets_total{port="2"} 11
# HELP ports_connected Number of ports with an established link.
# TYPE ports_connected gauge
ports_connected 1
# HELP ports_total Number of ports reported by the switch.
# TYPE ports_total gauge
ports_total 2
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"port_enabled", "port_link_speed_bytes", "port_link_status", "port_link_up",
		"port_rx_good_packets_total", "port_tx_good_packets_total",
		"ports_connected", "ports_total")
	require.NoError(t, err)
}

func TestAddMetricsTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, AddMetrics(registry, testStatistics()))
	require.Error(t, AddMetrics(registry, testStatistics()))
}

func TestToFloat(t *testing.T) {
	require.Equal(t, float64(0), toFloat(nil))
	require.Equal(t, float64(42), toFloat(big.NewInt(42)))

	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.Equal(t, math.Ldexp(1, 128), toFloat(huge))
}
