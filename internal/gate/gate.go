// Package gate runs user-supplied Lua scripts that accept or reject a trace
// based on its statistics.
//
// A gate script defines a global function:
//
//	function gate(report, file)
//	  if report.runs / report.inserts < 0.5 then
//	    return false, "too little continuous typing"
//	  end
//	  return true
//	end
//
// report is the statistics report as a table keyed by the report's JSON
// field names. Returning false (or nil) fails the trace with the optional
// reason; returning nothing or any other value passes it.
package gate

import (
	"context"
	"encoding/json"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/editrace/internal/stats"
)

// FuncName is the global function a gate script must define.
const FuncName = "gate"

// Verdict is the outcome of a gate.
type Verdict struct {
	Pass   bool   `json:"pass" yaml:"pass"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Gate is a loaded gate script. It is safe for concurrent use; calls are
// serialized.
type Gate struct {
	name  string
	state *State
}

// Load compiles the gate script at path.
func Load(path string, opts ...StateOption) (*Gate, error) {
	s := NewState(opts...)
	if err := s.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("load gate %s: %w", path, err)
	}
	return newGate(path, s)
}

// New compiles a gate script from source. name is used in errors.
func New(name, code string, opts ...StateOption) (*Gate, error) {
	s := NewState(opts...)
	if err := s.DoString(code); err != nil {
		s.Close()
		return nil, fmt.Errorf("load gate %s: %w", name, err)
	}
	return newGate(name, s)
}

func newGate(name string, s *State) (*Gate, error) {
	if s.GetGlobal(FuncName).Type() != lua.LTFunction {
		s.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoGateFunc)
	}
	return &Gate{name: name, state: s}, nil
}

// Name returns the script path or name.
func (g *Gate) Name() string {
	return g.name
}

// Check runs the gate against the report of one trace file.
func (g *Gate) Check(ctx context.Context, file string, r stats.Report) (Verdict, error) {
	fields, err := reportFields(r)
	if err != nil {
		return Verdict{}, err
	}

	results, err := g.state.callWith(ctx, FuncName, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{toLua(L, fields), lua.LString(file)}
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("gate %s: %w", g.name, err)
	}
	if len(results) == 0 || lua.LVAsBool(results[0]) {
		return Verdict{Pass: true}, nil
	}

	v := Verdict{Reason: "rejected by " + g.name}
	if len(results) > 1 {
		if s, ok := results[1].(lua.LString); ok && s != "" {
			v.Reason = string(s)
		}
	}
	return v, nil
}

// Close releases the script's Lua state.
func (g *Gate) Close() error {
	return g.state.Close()
}

// reportFields converts a report into generic values keyed by JSON name.
func reportFields(r stats.Report) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return fields, nil
}

// toLua converts a decoded JSON value into a Lua value. Arrays become
// 1-based sequences.
func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		t := L.CreateTable(len(v), 0)
		for _, e := range v {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for k, e := range v {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}
