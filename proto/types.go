// Copyright 2023 The Ambry Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package proto

import (
	"encoding/json"
	"fmt"
)

// HardwareState is the health state of a data node or disk as reported by
// the external liveness collaborator. It is part of the persisted snapshot
// documents and serializes as a string.
type HardwareState uint8

const (
	HardwareStateUnknown HardwareState = iota
	HardwareStateAvailable
	HardwareStateUnavailable
)

const (
	hardwareStateAvailableName   = "AVAILABLE"
	hardwareStateUnavailableName = "UNAVAILABLE"
)

func (s HardwareState) IsValid() bool {
	return s == HardwareStateAvailable || s == HardwareStateUnavailable
}

func (s HardwareState) String() string {
	switch s {
	case HardwareStateAvailable:
		return hardwareStateAvailableName
	case HardwareStateUnavailable:
		return hardwareStateUnavailableName
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

func (s HardwareState) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("hardware state %d can not be marshaled", uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *HardwareState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	state, err := ParseHardwareState(name)
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseHardwareState maps a state name to its HardwareState value.
func ParseHardwareState(name string) (HardwareState, error) {
	switch name {
	case hardwareStateAvailableName:
		return HardwareStateAvailable, nil
	case hardwareStateUnavailableName:
		return HardwareStateUnavailable, nil
	default:
		return HardwareStateUnknown, fmt.Errorf("unknown hardware state %q", name)
	}
}
