// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	value := map[string]any{
		"zulu":  "last",
		"alpha": "first",
		"count": 3,
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical values produced different encodings")
	}
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	type record struct {
		Name     string `cbor:"name"`
		Status   string `cbor:"status"`
		Duration int64  `cbor:"duration_ms"`
	}

	in := record{Name: "steady-solve", Status: "ok", Duration: 81234}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out record
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestUnmarshalDefaultMapType(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Fatalf("nested type = %T, want map[string]any", outer["outer"])
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{"name": "mesh", "added_later": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out struct {
		Name string `cbor:"name"`
	}
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Name != "mesh" {
		t.Errorf("name = %q, want mesh", out.Name)
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, name := range []string{"generate-mesh", "steady-solve"} {
		if err := encoder.Encode(map[string]string{"stage": name}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"generate-mesh", "steady-solve"} {
		var entry map[string]string
		if err := decoder.Decode(&entry); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if entry["stage"] != want {
			t.Errorf("stage = %q, want %q", entry["stage"], want)
		}
	}
}
