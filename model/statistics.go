package model

import "math/big"

type Statistics struct {
	Ports []PortStatistic
}

type PortStatistic struct {
	// 1-based position in the page, not a device supplied id
	PortNumber int
	Enabled    bool
	LinkStatus LinkStatus

	TxGoodPackets *big.Int
	TxBadPackets  *big.Int
	RxGoodPackets *big.Int
	RxBadPackets  *big.Int
}

type Totals struct {
	TxGoodPackets *big.Int
	TxBadPackets  *big.Int
	RxGoodPackets *big.Int
	RxBadPackets  *big.Int
}

// Connected counts the ports with an established link.
func (s Statistics) Connected() int {
	connected := 0
	for _, port := range s.Ports {
		if port.LinkStatus.IsConnected() {
			connected++
		}
	}
	return connected
}

// Totals sums every counter kind over all ports.
func (s Statistics) Totals() Totals {
	totals := Totals{
		TxGoodPackets: new(big.Int),
		TxBadPackets:  new(big.Int),
		RxGoodPackets: new(big.Int),
		RxBadPackets:  new(big.Int),
	}
	for _, port := range s.Ports {
		addCounter(totals.TxGoodPackets, port.TxGoodPackets)
		addCounter(totals.TxBadPackets, port.TxBadPackets)
		addCounter(totals.RxGoodPackets, port.RxGoodPackets)
		addCounter(totals.RxBadPackets, port.RxBadPackets)
	}
	return totals
}

func addCounter(sum, value *big.Int) {
	if value != nil {
		sum.Add(sum, value)
	}
}
