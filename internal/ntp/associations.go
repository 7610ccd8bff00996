// Package ntp parses the output of Cisco IOS and IOS-XE
// "show ntp associations".
package ntp

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Peer modes derived from the row flags.
const (
	ModeSynchronized = "synchronized"
	ModeSelected     = "selected"
	ModeCandidate    = "candidate"
	ModeOutlyer      = "outlyer"
	ModeFalseticker  = "falseticker"
	ModeConfigured   = "configured"
)

// Clock states.
const (
	StateSynchronized   = "synchronized"
	StateUnsynchronized = "unsynchronized"
)

// Peer is one row of the association table.
type Peer struct {
	Address  string
	RefClock string
	Stratum  int
	When     string
	Poll     int
	Reach    uint16
	Delay    float64
	Offset   float64
	Disp     float64
	Mode     string
}

// ClockState describes what the system clock follows.
type ClockState struct {
	// AssociationsAddress is the sys.peer address; empty when unsynchronized.
	AssociationsAddress string
	State               string
}

// Associations is the parsed association table.
type Associations struct {
	Peers      map[string]Peer
	ClockState ClockState
}

const flagChars = "*#+-x~"

// ParseAssociations parses the command output.
func ParseAssociations(output string) (*Associations, error) {
	a := &Associations{
		Peers:      make(map[string]Peer),
		ClockState: ClockState{State: StateUnsynchronized},
	}

	headerSeen := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "address") && strings.Contains(trimmed, "ref clock"):
			headerSeen = true
			continue
		case strings.Contains(trimmed, "sys.peer"):
			// legend
			continue
		case !headerSeen:
			continue
		}

		peer, err := parseRow(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		a.Peers[peer.Address] = peer
		if peer.Mode == ModeSynchronized {
			a.ClockState = ClockState{AssociationsAddress: peer.Address, State: StateSynchronized}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !headerSeen {
		return nil, fmt.Errorf("no association table header in output")
	}
	return a, nil
}

func parseRow(row string) (Peer, error) {
	fields := strings.Fields(row)
	if len(fields) != 9 {
		return Peer{}, fmt.Errorf("malformed association row %q", row)
	}

	address := strings.TrimLeft(fields[0], flagChars)
	flags := fields[0][:len(fields[0])-len(address)]
	if address == "" {
		// flags separated from the address by whitespace
		return Peer{}, fmt.Errorf("malformed association row %q", row)
	}

	p := Peer{
		Address:  address,
		RefClock: fields[1],
		When:     fields[3],
		Mode:     mode(flags),
	}

	var err error
	if p.Stratum, err = strconv.Atoi(fields[2]); err != nil {
		return Peer{}, fmt.Errorf("stratum %q: %w", fields[2], err)
	}
	if p.Poll, err = strconv.Atoi(fields[4]); err != nil {
		return Peer{}, fmt.Errorf("poll %q: %w", fields[4], err)
	}
	reach, err := strconv.ParseUint(fields[5], 8, 16)
	if err != nil {
		return Peer{}, fmt.Errorf("reach %q: %w", fields[5], err)
	}
	p.Reach = uint16(reach)
	for i, dst := range []*float64{&p.Delay, &p.Offset, &p.Disp} {
		if *dst, err = strconv.ParseFloat(fields[6+i], 64); err != nil {
			return Peer{}, fmt.Errorf("column %d %q: %w", 7+i, fields[6+i], err)
		}
	}
	return p, nil
}

func mode(flags string) string {
	switch {
	case strings.Contains(flags, "*"):
		return ModeSynchronized
	case strings.Contains(flags, "#"):
		return ModeSelected
	case strings.Contains(flags, "+"):
		return ModeCandidate
	case strings.Contains(flags, "-"):
		return ModeOutlyer
	case strings.Contains(flags, "x"):
		return ModeFalseticker
	default:
		return ModeConfigured
	}
}
