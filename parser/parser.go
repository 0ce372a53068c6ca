// Package parser turns the PortStatisticsRpm.htm page of a TP-Link easy smart
// switch into typed per-port statistics.
//
// The page carries its data as JavaScript literals inside a <script> block:
//
//	var max_port_num = 8;
//	var all_info = {
//	state:[1,1,...],
//	link_status:[6,0,...],
//	pkts:[11,0,0,0,...]
//	};
//
// Every field is extracted on its own and only cross-checked while the port
// records are assembled.
package parser

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/swoga/tplink-check/model"
)

const (
	fieldPortCount  = "port_count"
	fieldState      = "state"
	fieldLinkStatus = "link_status"
	fieldPackets    = "pkts"

	// tx good, tx bad, rx good, rx bad
	countersPerPort = 4
)

// extractor pulls the first capture group of one field out of the page.
type extractor struct {
	field string
	re    *regexp.Regexp
}

func newExtractor(field, pattern string) extractor {
	return extractor{field: field, re: regexp.MustCompile(pattern)}
}

func (e extractor) value(body string) (string, error) {
	m := e.re.FindStringSubmatch(body)
	if m == nil {
		return "", missingField(e.field)
	}
	return m[1], nil
}

func (e extractor) list(body string) ([]string, error) {
	v, err := e.value(body)
	if err != nil {
		return nil, err
	}
	tokens := strings.Split(v, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return tokens, nil
}

type Parser struct {
	portCount  extractor
	state      extractor
	linkStatus extractor
	packets    extractor
}

func New() *Parser {
	return &Parser{
		portCount:  newExtractor(fieldPortCount, `max_port_num\s=\s(\d+)`),
		state:      newExtractor(fieldState, `state:\[(.*?)\],`),
		linkStatus: newExtractor(fieldLinkStatus, `link_status:\[(.*?)\],`),
		packets:    newExtractor(fieldPackets, `pkts:\[(.*?)\]`),
	}
}

// Parse extracts one record per port announced by max_port_num. The port
// count is authoritative, extra entries in the other series are ignored.
func (p *Parser) Parse(body string) (*model.Statistics, error) {
	numPorts, err := p.parsePortCount(body)
	if err != nil {
		return nil, err
	}

	states, err := p.parseStates(body)
	if err != nil {
		return nil, err
	}

	linkStatuses, err := p.parseLinkStatuses(body)
	if err != nil {
		return nil, err
	}
	if len(linkStatuses) < numPorts {
		return nil, &ParseError{
			Kind:  CountMismatch,
			Field: fieldLinkStatus,
			Msg:   fmt.Sprintf("got %d entries, expected at least %d", len(linkStatuses), numPorts),
		}
	}

	packets, err := p.parsePackets(body)
	if err != nil {
		return nil, err
	}
	if len(packets)/countersPerPort < numPorts {
		return nil, &ParseError{
			Kind:  CountMismatch,
			Field: fieldPackets,
			Msg:   fmt.Sprintf("got %d counters, expected %d per port for %d ports", len(packets), countersPerPort, numPorts),
		}
	}

	// the state list is not covered by the checks above
	if len(states) < numPorts {
		return nil, &ParseError{
			Kind:  MalformedNumber,
			Field: fieldState,
			Msg:   fmt.Sprintf("got %d valid entries, expected at least %d", len(states), numPorts),
		}
	}

	stats := &model.Statistics{Ports: make([]model.PortStatistic, 0, numPorts)}
	for i := 0; i < numPorts; i++ {
		counters := packets[i*countersPerPort:]
		stats.Ports = append(stats.Ports, model.PortStatistic{
			PortNumber:    i + 1,
			Enabled:       states[i],
			LinkStatus:    model.DecodeLinkStatus(uint64(linkStatuses[i])),
			TxGoodPackets: counters[0],
			TxBadPackets:  counters[1],
			RxGoodPackets: counters[2],
			RxBadPackets:  counters[3],
		})
	}
	return stats, nil
}

func (p *Parser) parsePortCount(body string) (int, error) {
	v, err := p.portCount.value(body)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Kind: MalformedNumber, Field: fieldPortCount, Msg: err.Error()}
	}
	return n, nil
}

func (p *Parser) parseStates(body string) ([]bool, error) {
	tokens, err := p.state.list(body)
	if err != nil {
		return nil, err
	}
	states := make([]bool, 0, len(tokens))
	for _, token := range tokens {
		switch token {
		case "1":
			states = append(states, true)
		case "0":
			states = append(states, false)
		}
	}
	return states, nil
}

func (p *Parser) parseLinkStatuses(body string) ([]uint8, error) {
	tokens, err := p.linkStatus.list(body)
	if err != nil {
		return nil, err
	}
	codes := make([]uint8, 0, len(tokens))
	for _, token := range tokens {
		code, err := strconv.ParseUint(token, 10, 8)
		if err != nil {
			continue
		}
		codes = append(codes, uint8(code))
	}
	return codes, nil
}

func (p *Parser) parsePackets(body string) ([]*big.Int, error) {
	tokens, err := p.packets.list(body)
	if err != nil {
		return nil, err
	}
	counters := make([]*big.Int, 0, len(tokens))
	for _, token := range tokens {
		counter, ok := parseCounter(token)
		if !ok {
			continue
		}
		counters = append(counters, counter)
	}
	return counters, nil
}

// parseCounter accepts plain decimal digits only.
func parseCounter(token string) (*big.Int, bool) {
	if token == "" {
		return nil, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return nil, false
		}
	}
	return new(big.Int).SetString(token, 10)
}
