// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()

	if err != nil {
		panic(fmt.Sprintf("machine: failed to create CBOR enc mode: %v", err))
	}

	snapshotEncMode = em
}

// Snapshot returns a deep copy of the machine state.
func (mc *Machine) Snapshot() MachineState {
	state := mc.State
	state.Memory = append([]byte(nil), mc.State.Memory...)
	return state
}

// Restore replaces the machine state with a copy of state.
func (mc *Machine) Restore(state *MachineState) error {
	if size := len(state.Memory); size < 1 || size > MEMORY_SIZE {
		return fmt.Errorf(
			"machine: snapshot memory size %d outside 1..%d", size, MEMORY_SIZE,
		)
	}

	mc.State = *state
	mc.State.Memory = append([]byte(nil), state.Memory...)

	return nil
}

func MarshalSnapshot(state *MachineState) ([]byte, error) {
	return snapshotEncMode.Marshal(state)
}

func UnmarshalSnapshot(data []byte) (*MachineState, error) {
	var state MachineState

	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("machine: unmarshal snapshot: %w", err)
	}

	return &state, nil
}
