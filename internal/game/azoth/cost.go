package azoth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Element is an affinity tag carried by cards and resources.
type Element string

const (
	ElementFire    Element = "fire"
	ElementWater   Element = "water"
	ElementWind    Element = "wind"
	ElementEarth   Element = "earth"
	ElementLight   Element = "light"
	ElementDark    Element = "dark"
	ElementNeutral Element = "neutral"
)

var elements = map[string]Element{
	"fire":    ElementFire,
	"water":   ElementWater,
	"wind":    ElementWind,
	"earth":   ElementEarth,
	"light":   ElementLight,
	"dark":    ElementDark,
	"neutral": ElementNeutral,
}

// ParseElement resolves an element by name, case-insensitively.
func ParseElement(name string) (Element, error) {
	if el, ok := elements[strings.ToLower(strings.TrimSpace(name))]; ok {
		return el, nil
	}
	return "", fmt.Errorf("unknown element %q", name)
}

// Cost is the Azoth a card or ability requires: a number of generic
// resources plus one resource per listed element.
type Cost struct {
	Generic  int
	Elements []Element
}

// Total returns the number of resources the cost asks for.
func (c Cost) Total() int {
	return c.Generic + len(c.Elements)
}

// String renders the cost in symbol form, e.g. "{2}{fire}".
func (c Cost) String() string {
	var b strings.Builder
	if c.Generic > 0 || len(c.Elements) == 0 {
		fmt.Fprintf(&b, "{%d}", c.Generic)
	}
	for _, el := range c.Elements {
		fmt.Fprintf(&b, "{%s}", el)
	}
	return b.String()
}

// MarshalText encodes the cost in symbol form.
func (c Cost) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses symbol form; see ParseCost.
func (c *Cost) UnmarshalText(text []byte) error {
	parsed, err := ParseCost(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a cost string such as "{2}{FIRE}" or "{water}{water}".
// A bare integer ("3") is accepted as a generic cost.
func ParseCost(costStr string) (Cost, error) {
	costStr = strings.TrimSpace(costStr)
	if costStr == "" {
		return Cost{}, nil
	}
	if n, err := strconv.Atoi(costStr); err == nil {
		if n < 0 {
			return Cost{}, fmt.Errorf("negative cost %d", n)
		}
		return Cost{Generic: n}, nil
	}

	var cost Cost
	matches := symbolPattern.FindAllStringSubmatch(costStr, -1)
	if len(matches) == 0 {
		return Cost{}, fmt.Errorf("malformed cost %q", costStr)
	}
	for _, match := range matches {
		symbol := strings.TrimSpace(match[1])
		if num, err := strconv.Atoi(symbol); err == nil {
			if num < 0 {
				return Cost{}, fmt.Errorf("negative generic symbol {%s}", symbol)
			}
			cost.Generic += num
			continue
		}
		el, err := ParseElement(symbol)
		if err != nil {
			return Cost{}, fmt.Errorf("unknown azoth symbol {%s}", symbol)
		}
		cost.Elements = append(cost.Elements, el)
	}
	return cost, nil
}

// Clone returns an independent copy.
func (c Cost) Clone() Cost {
	return Cost{Generic: c.Generic, Elements: append([]Element(nil), c.Elements...)}
}
