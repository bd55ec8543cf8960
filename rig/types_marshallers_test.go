package rig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

func expect(t *testing.T, test, v, to string) {
	if v != to {
		t.Errorf("%s: expected \"%s\" to equal \"%s\".", test, v, to)
	}
}

func TestTypesMarshallers(t *testing.T) {
	var (
		s        PowerState
		expected string
		b        []byte
		err      error
	)

	s = PowerState(SocketOpen)
	expected = fmt.Sprintf("\"%s\"", s)
	b, err = json.Marshal(s)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "PowerState_MarshallJSON", string(b), string(expected))
	}
}

func TestUnmarshallers(t *testing.T) {
	var (
		s   PowerState
		b   *bytes.Buffer
		dec *json.Decoder
		err error
	)

	b = new(bytes.Buffer)
	b.WriteString("\"Sleeping\"")
	dec = json.NewDecoder(b)
	err = dec.Decode(&s)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "PowerState_UnmarshallJSON", s.String(), Sleeping.String())
	}
}
