// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package instance

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

// ErrMalformed is returned by Decode for payloads that are neither the raise
// marker nor a known command.
var ErrMalformed = errors.Base("malformed message")

// Command tags a loopback message.
type Command string

const (
	CommandRaise Command = "raise"
	CommandAdd   Command = "add"
)

// RaiseMarker is the opaque payload asking the live instance to come to front.
var RaiseMarker = []byte("RAISE")

// 📨 Message is one request sent to the authoritative instance
type Message struct {
	Cmd   Command  `json:"cmd"`
	Files []string `json:"files,omitempty"`
}

// Raise builds the bring-to-front request.
func Raise() Message { return Message{Cmd: CommandRaise} }

// Add builds the hand-off request for files.
func Add(files ...string) Message { return Message{Cmd: CommandAdd, Files: files} }

// Encode renders m as it travels on the wire: the bare marker for a raise,
// a JSON object for everything else.
func Encode(m Message) ([]byte, error) {
	switch m.Cmd {
	case CommandRaise:
		return append([]byte(nil), RaiseMarker...), nil
	case CommandAdd:
		data, err := json.Marshal(m)
		if err != nil {
			return nil, errors.Errorf("encoding message: %w", err)
		}
		return data, nil
	default:
		return nil, errors.Errorf("%w: unknown command %q", ErrMalformed, m.Cmd)
	}
}

// Decode parses a payload read from a connection.
func Decode(data []byte) (Message, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, RaiseMarker) {
		return Raise(), nil
	}

	var m Message
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return Message{}, errors.Errorf("%w: %w", ErrMalformed, err)
	}

	switch m.Cmd {
	case CommandAdd:
		return m, nil
	case CommandRaise:
		return Raise(), nil
	default:
		return Message{}, errors.Errorf("%w: unknown command %q", ErrMalformed, m.Cmd)
	}
}
