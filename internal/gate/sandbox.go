package gate

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// safeModules are the only modules require may return.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// installSandbox removes the ways a script could reach the file system or
// load further code. If printFn is set, the script's print writes to it.
func installSandbox(L *lua.LState, printFn func(string)) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	originalRequire := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safeModules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))

	if printFn != nil {
		L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
			n := L.GetTop()
			parts := make([]string, 0, n)
			for i := 1; i <= n; i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			printFn(strings.Join(parts, "\t"))
			return 0
		}))
	}
}
