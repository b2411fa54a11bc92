package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/netsolver/pkg/device"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTRAN
	AnalysisDC
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "op"
	case AnalysisTRAN:
		return "tran"
	case AnalysisDC:
		return "dc"
	default:
		return fmt.Sprintf("AnalysisType(%d)", int(a))
	}
}

type NetlistData struct {
	Elements  []Element                    // Circuit elements
	Nodes     map[string]int               // Node name and first-seen index
	Models    map[string]device.ModelParam // Model parameters
	Options   map[string]string            // .options key=value
	Analysis  AnalysisType                 // Analysis type
	TranParam struct {
		TStep  float64 // timestep
		TStop  float64 // stop time
		TStart float64 // start time
		TMax   float64 // max timestep
		UIC    bool    // Use Initial Conditions
	}
	DCParam struct {
		Source    string
		Start     float64
		Stop      float64
		Increment float64
	}
	Title string // Circuit title
}

type Element struct {
	Type   string            // Part type (R, C, V, etc.)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value
	Params map[string]string // Parameter values
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"M":   1e-3,  // milli, SPICE is case insensitive
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|MEG|Meg|[TGMKkmunpf])?[a-zA-Z]*$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

func newNetlistData() *NetlistData {
	return &NetlistData{
		Nodes:   make(map[string]int),
		Models:  make(map[string]device.ModelParam),
		Options: make(map[string]string),
	}
}

func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := newNetlistData()

	// Title
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	lineNo, startLine := 1, 1

	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseLine(netlistData, currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", startLine, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Full comment line
		if len(line) == 0 || strings.HasPrefix(line, "*") {
			continue
		}

		// Inline comment
		if idx := strings.IndexAny(line, ";$"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if len(line) == 0 {
				continue
			}
		}

		// Continuation
		if strings.HasPrefix(line, "+") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "+"))
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a preceding line", lineNo)
			}
			currentLine += " " + line
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if strings.EqualFold(line, ".end") {
			break
		}
		currentLine = line
		startLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = spaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	netlistData.Elements = append(netlistData.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := netlistData.Nodes[node]; !exists {
			netlistData.Nodes[node] = len(netlistData.Nodes)
		}
	}
	return nil
}

// Parse .op, .tran, .dc, .model, .options
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".model":
		return parseModel(netlistData, fields[1:])

	case ".op":
		netlistData.Analysis = AnalysisOP

	case ".tran":
		netlistData.Analysis = AnalysisTRAN
		if len(fields) < 3 {
			return fmt.Errorf("insufficient tran parameters, need at least tstep and tstop")
		}
		netlistData.TranParam.TStep, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %v", err)
		}
		netlistData.TranParam.TStop, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %v", err)
		}
		if netlistData.TranParam.TStep <= 0 || netlistData.TranParam.TStop <= 0 {
			return fmt.Errorf("tstep and tstop must be positive")
		}

		pos := 0
		for _, f := range fields[3:] {
			if strings.EqualFold(f, "uic") {
				netlistData.TranParam.UIC = true
				continue
			}
			v, err := ParseValue(f)
			if err != nil {
				return fmt.Errorf("invalid tran parameter %s: %v", f, err)
			}
			switch pos {
			case 0:
				netlistData.TranParam.TStart = v
			case 1:
				netlistData.TranParam.TMax = v
			default:
				return fmt.Errorf("too many tran parameters")
			}
			pos++
		}
		if netlistData.TranParam.TMax == 0 {
			netlistData.TranParam.TMax = netlistData.TranParam.TStep
		}

	case ".dc":
		netlistData.Analysis = AnalysisDC
		if len(fields) != 5 {
			return fmt.Errorf("dc sweep needs source, start, stop and increment")
		}
		netlistData.DCParam.Source = fields[1]
		vals := make([]float64, 3)
		for i, f := range fields[2:] {
			if vals[i], err = ParseValue(f); err != nil {
				return fmt.Errorf("invalid dc sweep value %s: %v", f, err)
			}
		}
		netlistData.DCParam.Start = vals[0]
		netlistData.DCParam.Stop = vals[1]
		netlistData.DCParam.Increment = vals[2]

	case ".options", ".option", ".opt":
		for _, pair := range fields[1:] {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				// bare flag
				value = "1"
			}
			netlistData.Options[strings.ToLower(key)] = value
		}

	default:
		return fmt.Errorf("unsupported control line: %s", fields[0])
	}

	return nil
}

func parseModel(netlistData *NetlistData, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("insufficient model parameters")
	}

	modelName := fields[0]
	rest := strings.Join(fields[1:], " ")
	rest = strings.ReplaceAll(rest, "(", " ")
	rest = strings.ReplaceAll(rest, ")", " ")
	words := strings.Fields(rest)

	modelType := strings.ToUpper(words[0])
	if modelType != "D" {
		return fmt.Errorf("unsupported model type: %s", modelType)
	}

	params := map[string]float64{
		"is":  1e-14, // Saturation current
		"n":   1.0,   // Emission coefficient
		"eg":  1.11,  // Energy gap
		"xti": 3.0,   // Saturation current temp exp
	}

	for _, pair := range words[1:] {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid model parameter %s", pair)
		}
		value, err := ParseValue(val)
		if err != nil {
			return fmt.Errorf("invalid parameter value %s: %v", pair, err)
		}
		params[strings.ToLower(name)] = value
	}

	netlistData.Models[modelName] = device.ModelParam{
		Type:   modelType,
		Name:   modelName,
		Params: params,
	}
	return nil
}

// Parse circuit element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V", "I":
		return parseSource(elem, fields)

	case "D":
		elem.Nodes = fields[1:3]
		if len(fields) > 3 {
			elem.Params["model"] = fields[3]
		}
		return elem, nil

	case "G":
		if len(fields) != 6 {
			return nil, fmt.Errorf("%s: VCCS needs n+ n- nc+ nc- gm", elem.Name)
		}
		elem.Nodes = fields[1:5]

	case "R", "C":
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: needs two nodes and a value", elem.Name)
		}
		elem.Nodes = fields[1:3]

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Name)
	}

	value, err := ParseValue(fields[len(fields)-1])
	if err != nil {
		return nil, fmt.Errorf("%s: %v", elem.Name, err)
	}
	elem.Value = value
	return elem, nil
}

func parseSource(elem *Element, fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient source parameters for %s", elem.Name)
	}
	elem.Nodes = []string{fields[1], fields[2]}

	remaining := strings.Join(fields[3:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ") // Append whitespace around parentheses
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)

	kind := strings.ToUpper(words[0])
	args := strings.Trim(strings.Join(words[1:], " "), "() ")

	switch kind {
	case "DC":
		if len(words) < 2 {
			return nil, fmt.Errorf("missing DC value")
		}
		value, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		elem.Params["type"] = "dc"
		elem.Value = value

	case "SIN", "PULSE", "PWL":
		elem.Params["type"] = strings.ToLower(kind)
		elem.Params[strings.ToLower(kind)] = args

	default:
		// bare value means DC
		value, err := ParseValue(words[0])
		if err != nil {
			return nil, fmt.Errorf("unsupported source type: %s", words[0])
		}
		elem.Params["type"] = "dc"
		elem.Value = value
	}

	return elem, nil
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if factor := matches[2]; factor != "" {
		if strings.EqualFold(factor, "meg") {
			factor = "meg"
		}
		if multiplier, ok := unitMap[factor]; ok {
			num *= multiplier
		}
	}

	return num, nil
}
