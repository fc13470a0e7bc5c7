// Package netlist parses the textual card format into a structured element
// list. One element per line, first line is the title, "*" starts a comment.
// The card set:
//
//	R<name> <n+> <n-> <resistance>
//	G<name> <io+> <io-> <vi+> <vi-> <gm>
//	E<name> <vo+> <vo-> <vi+> <vi-> <Av>
//	F<name> <io+> <io-> <ii+> <ii-> <Ai>
//	H<name> <vo+> <vo-> <ii+> <ii-> <Rm>
//	I<name> <n+> <n-> DC <v> | SIN(<off> <amp> <freq>) | PULSE(<a1> <a2> <delay>)
//	V<name> <n+> <n-> DC <v> | SIN(...) | PULSE(...)
//	O<name> <vo1> <vo2> <vi1> <vi2>
//	C<name> <n+> <n-> <capacitance> [IC=<v0>]
//	L<name> <n+> <n-> <inductance> [IC=<i0>]
//	X<name> <n+> <n-> <inductance> [IC=<i0>]
//	K<name> <L1> <L2> <coupling>
//	D<name> <n+> <n->
//	M<name> <nd> <ng> <ns> <nb> NMOS|PMOS L=<l> W=<w>
//	Q<name> <nc> <nb> <ne> NPN|PNP
//	.tran <time> <points> <steps> [be|fe|trap]
package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mnaspice/pkg/device"
)

var ErrMalformedElement = errors.New("malformed element")

// Element is one parsed netlist card.
type Element struct {
	Type  string   // Card letter: R, G, E, F, H, I, V, O, C, L, X, K, D, M, Q
	Name  string   // Full element name, e.g. "R1"
	Nodes []string // Node names, 2 to 4 of them
	Value float64  // Primary parameter (resistance, gain, coupling, ...)
	IC    float64  // Initial condition for C, L, X
	Shape device.Waveform // I and V sources
	Pol   device.Polarity // M and Q
	L, W  float64  // MOSFET geometry
	Refs  []string // K: the two coupled inductor names
}

// TranParam is the simulation profile from the .tran card.
type TranParam struct {
	Time   float64 // Total simulated time
	Points int     // Emitted samples
	Steps  int     // Internal steps per emitted sample
	Method device.Method
	Set    bool
}

type Circuit struct {
	Title    string
	Elements []Element
	Tran     TranParam
}

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGKkmunpf])?s?$`)

// ParseValue parses a numeric field with an optional engineering suffix:
// 1k -> 1000, 1u -> 1e-6.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}
	return num, nil
}

func Parse(input string) (*Circuit, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	ckt := &Circuit{}

	if scanner.Scan() {
		ckt.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := parseDirective(ckt, line); err != nil {
				return nil, err
			}
			continue
		}

		elem, err := parseElement(line)
		if err != nil {
			return nil, err
		}
		ckt.Elements = append(ckt.Elements, *elem)
	}

	return ckt, nil
}

func parseDirective(ckt *Circuit, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".tran":
		if len(fields) < 4 {
			return fmt.Errorf(".tran: need <time> <points> <steps>")
		}
		var err error
		if ckt.Tran.Time, err = ParseValue(fields[1]); err != nil {
			return fmt.Errorf(".tran time: %v", err)
		}
		if ckt.Tran.Points, err = strconv.Atoi(fields[2]); err != nil {
			return fmt.Errorf(".tran points: %v", err)
		}
		if ckt.Tran.Steps, err = strconv.Atoi(fields[3]); err != nil {
			return fmt.Errorf(".tran steps: %v", err)
		}
		ckt.Tran.Method = device.Trap
		if len(fields) > 4 {
			m, err := ParseMethod(fields[4])
			if err != nil {
				return err
			}
			ckt.Tran.Method = m
		}
		ckt.Tran.Set = true
	default:
		// Other "." commands are ignored, as the reference tool does.
	}
	return nil
}

// ParseMethod maps an integration-rule name to its selector.
func ParseMethod(s string) (device.Method, error) {
	switch strings.ToLower(s) {
	case "be":
		return device.BE, nil
	case "fe":
		return device.FE, nil
	case "trap":
		return device.Trap, nil
	}
	return 0, fmt.Errorf("unknown integration method %q", s)
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	elem := &Element{
		Name: fields[0],
		Type: strings.ToUpper(fields[0][:1]),
	}

	var err error
	switch elem.Type {
	case "R":
		err = parseTwoNode(elem, fields, false)
	case "C", "L", "X":
		err = parseTwoNode(elem, fields, true)
	case "G", "E", "F", "H":
		err = parseControlled(elem, fields)
	case "O":
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: %s: opamp needs 4 nodes", ErrMalformedElement, elem.Name)
		}
		elem.Nodes = fields[1:5]
	case "I", "V":
		err = parseSource(elem, fields)
	case "K":
		err = parseCoupling(elem, fields)
	case "D":
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %s: diode needs 2 nodes", ErrMalformedElement, elem.Name)
		}
		elem.Nodes = fields[1:3]
	case "M":
		err = parseMOSFET(elem, fields)
	case "Q":
		err = parseBJT(elem, fields)
	default:
		return nil, fmt.Errorf("%w: unknown element kind %q", ErrMalformedElement, elem.Name)
	}
	if err != nil {
		return nil, err
	}
	return elem, nil
}

func parseTwoNode(elem *Element, fields []string, withIC bool) error {
	if len(fields) < 4 {
		return fmt.Errorf("%w: %s: need 2 nodes and a value", ErrMalformedElement, elem.Name)
	}
	elem.Nodes = fields[1:3]
	value, err := ParseValue(fields[3])
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
	}
	elem.Value = value
	if withIC && len(fields) > 4 {
		ic := trimPrefixFold(fields[4], "IC=")
		if elem.IC, err = ParseValue(ic); err != nil {
			return fmt.Errorf("%w: %s: bad IC: %v", ErrMalformedElement, elem.Name, err)
		}
	}
	return nil
}

func parseControlled(elem *Element, fields []string) error {
	if len(fields) != 6 {
		return fmt.Errorf("%w: %s: need 4 nodes and a gain", ErrMalformedElement, elem.Name)
	}
	elem.Nodes = fields[1:5]
	value, err := ParseValue(fields[5])
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
	}
	elem.Value = value
	return nil
}

func parseSource(elem *Element, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("%w: %s: need 2 nodes and a waveform", ErrMalformedElement, elem.Name)
	}
	elem.Nodes = fields[1:3]

	// Split parentheses off so "SIN(0 5 1k)" and "SIN ( 0 5 1k )" read alike.
	rest := strings.Join(fields[3:], " ")
	rest = strings.ReplaceAll(rest, "(", " ")
	rest = strings.ReplaceAll(rest, ")", " ")
	words := strings.Fields(rest)

	kind := strings.ToUpper(words[0])
	params := words[1:]
	var err error
	switch kind {
	case "DC":
		if len(params) < 1 {
			return fmt.Errorf("%w: %s: missing DC value", ErrMalformedElement, elem.Name)
		}
		elem.Shape.Type = device.DC
		if elem.Shape.P1, err = ParseValue(params[0]); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
		}
	case "SIN", "PULSE":
		if len(params) < 3 {
			return fmt.Errorf("%w: %s: %s needs 3 parameters", ErrMalformedElement, elem.Name, kind)
		}
		elem.Shape.Type = device.SIN
		if kind == "PULSE" {
			elem.Shape.Type = device.PULSE
		}
		if elem.Shape.P1, err = ParseValue(params[0]); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
		}
		if elem.Shape.P2, err = ParseValue(params[1]); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
		}
		if elem.Shape.P3, err = ParseValue(params[2]); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
		}
	default:
		return fmt.Errorf("%w: %s: invalid waveform %q", ErrMalformedElement, elem.Name, words[0])
	}
	elem.Value = elem.Shape.P1
	return nil
}

func parseCoupling(elem *Element, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("%w: %s: need 2 inductor names and a coefficient", ErrMalformedElement, elem.Name)
	}
	elem.Refs = fields[1:3]
	value, err := ParseValue(fields[3])
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedElement, elem.Name, err)
	}
	elem.Value = value
	return nil
}

func parseMOSFET(elem *Element, fields []string) error {
	if len(fields) != 8 {
		return fmt.Errorf("%w: %s: need 4 nodes, a type, L= and W=", ErrMalformedElement, elem.Name)
	}
	elem.Nodes = fields[1:5]
	var err error
	if elem.Pol, err = parsePolarity(elem.Name, fields[5]); err != nil {
		return err
	}
	if elem.L, err = ParseValue(trimPrefixFold(fields[6], "L=")); err != nil {
		return fmt.Errorf("%w: %s: bad L: %v", ErrMalformedElement, elem.Name, err)
	}
	if elem.W, err = ParseValue(trimPrefixFold(fields[7], "W=")); err != nil {
		return fmt.Errorf("%w: %s: bad W: %v", ErrMalformedElement, elem.Name, err)
	}
	return nil
}

func parseBJT(elem *Element, fields []string) error {
	if len(fields) != 5 {
		return fmt.Errorf("%w: %s: need 3 nodes and a type", ErrMalformedElement, elem.Name)
	}
	elem.Nodes = fields[1:4]
	var err error
	elem.Pol, err = parsePolarity(elem.Name, fields[4])
	return err
}

// trimPrefixFold drops a case-insensitive prefix without touching the case
// of what follows it ("IC=1m" must keep its milli suffix).
func trimPrefixFold(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):]
	}
	return s
}

func parsePolarity(name, s string) (device.Polarity, error) {
	switch strings.ToUpper(s)[:1] {
	case "N":
		return device.TypeN, nil
	case "P":
		return device.TypeP, nil
	}
	return 0, fmt.Errorf("%w: %s: invalid polarity %q", ErrMalformedElement, name, s)
}
