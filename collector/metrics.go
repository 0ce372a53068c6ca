package collector

import (
	"math/big"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/swoga/tplink-check/model"
	"github.com/swoga/tplink-check/report"
)

func AddMetrics(registry prometheus.Registerer, statistics model.Statistics) error {
	err := addMetricsPorts(prometheus.WrapRegistererWithPrefix("port_", registry), statistics.Ports)
	if err != nil {
		return err
	}
	return addMetricsSwitch(registry, statistics)
}

func addMetricsSwitch(registry prometheus.Registerer, statistics model.Statistics) error {
	portsConnectedGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ports_connected",
		Help: "Number of ports with an established link.",
	})
	portsTotalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ports_total",
		Help: "Number of ports reported by the switch.",
	})
	for _, c := range []prometheus.Collector{portsConnectedGauge, portsTotalGauge} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	portsConnectedGauge.Set(float64(statistics.Connected()))
	portsTotalGauge.Set(float64(len(statistics.Ports)))
	return nil
}

func addMetricsPorts(registry prometheus.Registerer, ports []model.PortStatistic) error {
	labels := []string{"port"}

	enabledGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "enabled",
		Help: "Whether the port is administratively enabled.",
	}, labels)
	linkUpGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_up",
		Help: "Whether the port has an established link.",
	}, labels)
	linkSpeedGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_speed_bytes",
		Help: "Nominal link speed as reported in the plugin output.",
	}, labels)
	linkStatusGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "link_status",
		Help: "Link status label of the port, always 1.",
	}, []string{"port", "status"})

	txGoodCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tx_good_packets_total",
		Help: "Good packets transmitted.",
	}, labels)
	txBadCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tx_bad_packets_total",
		Help: "Bad packets transmitted.",
	}, labels)
	rxGoodCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rx_good_packets_total",
		Help: "Good packets received.",
	}, labels)
	rxBadCounterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rx_bad_packets_total",
		Help: "Bad packets received.",
	}, labels)

	for _, c := range []prometheus.Collector{
		enabledGaugeVec, linkUpGaugeVec, linkSpeedGaugeVec, linkStatusGaugeVec,
		txGoodCounterVec, txBadCounterVec, rxGoodCounterVec, rxBadCounterVec,
	} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	for _, port := range ports {
		name := strconv.Itoa(port.PortNumber)

		var enabled float64 = 0
		if port.Enabled {
			enabled = 1
		}
		enabledGaugeVec.WithLabelValues(name).Set(enabled)

		var linkUp float64 = 0
		if port.LinkStatus.IsConnected() {
			linkUp = 1
		}
		linkUpGaugeVec.WithLabelValues(name).Set(linkUp)

		linkSpeedGaugeVec.WithLabelValues(name).Set(float64(report.LinkSpeedBytes(port.LinkStatus)))
		linkStatusGaugeVec.WithLabelValues(name, port.LinkStatus.String()).Set(1)

		txGoodCounterVec.WithLabelValues(name).Add(toFloat(port.TxGoodPackets))
		txBadCounterVec.WithLabelValues(name).Add(toFloat(port.TxBadPackets))
		rxGoodCounterVec.WithLabelValues(name).Add(toFloat(port.RxGoodPackets))
		rxBadCounterVec.WithLabelValues(name).Add(toFloat(port.RxBadPackets))
	}
	return nil
}

// toFloat loses precision above 2^53, counters of that size exceed what a
// prometheus sample can carry anyway.
func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
