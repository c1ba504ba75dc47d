// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import (
	"strconv"
	"strings"
)

// Parse decodes a `data_redundancy` configuration value of the form
// `SCHEME_p1_p2_...` (e.g. "RS_14_10", "LRC_16_10_2", "MSR_14_10_12")
// into a concrete Scheme, per spec.md §6.
func Parse(spec string) (Scheme, error) {
	parts := strings.Split(spec, "_")
	if len(parts) < 3 {
		return nil, Error.New("data_redundancy %q: expected SCHEME_n_k[...]", spec)
	}
	name := strings.ToUpper(parts[0])
	params := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, Error.New("data_redundancy %q: non-integer parameter %q", spec, p)
		}
		params = append(params, v)
	}

	switch name {
	case "RS":
		if len(params) != 2 {
			return nil, Error.New("RS requires n,k, got %v", params)
		}
		return NewRS(params[0], params[1])
	case "LRC":
		if len(params) != 3 {
			return nil, Error.New("LRC requires n,k,l, got %v", params)
		}
		return NewLRC(params[0], params[1], params[2])
	case "XORBAS":
		if len(params) != 3 {
			return nil, Error.New("XORBAS requires n,k,l, got %v", params)
		}
		return NewXORBAS(params[0], params[1], params[2])
	case "MSR":
		if len(params) != 3 {
			return nil, Error.New("MSR requires n,k,d, got %v", params)
		}
		return NewMSR(params[0], params[1], params[2])
	case "DRC":
		if len(params) != 3 {
			return nil, Error.New("DRC requires n,k,r, got %v", params)
		}
		return NewDRC(params[0], params[1], params[2])
	case "DOUBLER":
		if len(params) != 3 {
			return nil, Error.New("DOUBLER requires n,k,r, got %v", params)
		}
		return NewDoubler(params[0], params[1], params[2])
	default:
		return nil, Error.New("unknown redundancy scheme %q", name)
	}
}
