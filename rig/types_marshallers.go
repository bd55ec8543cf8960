package rig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// This file contains (un)marshallers for PowerState, allowing to more
// easily encode / decode string values instead of int values, making
// communication with any front-end or config files easier.
//
// this file should be go-generated, too

// ---- type PowerState int

func (s PowerState) MarshalJSON() ([]byte, error) {
	b, err := s.MarshalText()
	if err == nil {
		b = []byte(fmt.Sprintf("\"%s\"", string(b)))
	}
	return b, err
}

func (s *PowerState) UnmarshalJSON(data []byte) error {
	dataLength := len(data)
	if data[0] != '"' || data[dataLength-1] != '"' {
		return errors.New("PowerState.UnmarshalJSON: Invalid JSON provided")
	}
	return s.UnmarshalText(data[1 : dataLength-1])
}

func (s PowerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PowerState) UnmarshalText(b []byte) error {
	str := string(b)
	idx := strings.Index(_PowerState_name, str)
	if idx < 0 {
		i, err := strconv.Atoi(str)
		if err == nil {
			*s = PowerState(i)
			return nil
		}
		return fmt.Errorf("Cannot unmarshall \"%s\" to PowerState. Is it mispelled?", str)
	}

	for i, v := range _PowerState_index {
		if int(v) == idx {
			*s = PowerState(i)
			return nil
		}
	}
	return fmt.Errorf("unexpected error in UnmarshalText for '%s' (go generate?)", s)
}
