// Package universe holds the named ticker lists that can be screened.
package universe

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownUniverse is returned for a name that is not registered.
var ErrUnknownUniverse = errors.New("unknown universe")

// Default is screened when no universe is named.
const Default = "test"

var universes = map[string][]string{
	// Top S&P 500 constituents by weight
	"sp500": {
		"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "TSLA", "BRK.B", "LLY", "V",
		"TSM", "AVGO", "NVO", "JPM", "WMT", "XOM", "MA", "UNH", "PG", "JNJ",
	},
	"nasdaq100": {
		"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "TSLA", "AVGO", "ASML", "COST",
		"PEP", "CSCO", "NFLX", "AMD", "INTC",
	},
	// Mix of crowded longs and meme names for quick runs
	"test": {
		"AAPL", "TSLA", "GME", "AMC", "MSFT", "NVDA", "GOOGL", "AMD", "PLTR", "COIN",
	},
}

// Get returns a copy of the named universe. Names are case-insensitive.
func Get(name string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	tickers, ok := universes[key]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownUniverse, name, strings.Join(Names(), ", "))
	}
	out := make([]string, len(tickers))
	copy(out, tickers)
	return out, nil
}

// Names lists the registered universes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(universes))
	for name := range universes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes maps each universe to its ticker count.
func Sizes() map[string]int {
	out := make(map[string]int, len(universes))
	for name, tickers := range universes {
		out[name] = len(tickers)
	}
	return out
}

// Resolve turns a comma-separated ticker list or a universe name into tickers.
// Anything containing a comma, or a single token that is not a universe
// name, is read as explicit tickers.
func Resolve(arg string) ([]string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Get(Default)
	}
	if !strings.Contains(arg, ",") {
		if tickers, err := Get(arg); err == nil {
			return tickers, nil
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(arg, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownUniverse, arg)
	}
	return out, nil
}
