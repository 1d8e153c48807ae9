package selection

import (
	"context"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	sandboxTimeoutViolation     = "rule timeout"
	sandboxInstructionViolation = "rule instruction limit"

	defaultRuleTimeoutMs      = 200
	defaultRuleInstructionCap = 100000
)

// ruleSandbox bounds what an inline rule may do: only the base, string,
// table and math libraries are opened, and evaluation is cut off by a
// per-call timeout.
type ruleSandbox struct {
	timeoutMs      int
	instructionCap int
}

func defaultSandbox() ruleSandbox {
	return ruleSandbox{timeoutMs: defaultRuleTimeoutMs, instructionCap: defaultRuleInstructionCap}
}

func newRuleState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     256,
		RegistryMaxSize:  4096,
		RegistryGrowStep: 0,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}

// instructionCapWouldTrip is a cheap static guard against unbounded loops in
// inline rules, applied before any evaluation happens.
func instructionCapWouldTrip(code string, limit int) bool {
	if limit <= 0 {
		return false
	}
	cost := len(code) * 10
	lower := strings.ToLower(code)
	if strings.Contains(lower, "while ") || strings.Contains(lower, "repeat") || strings.Contains(lower, "for ") {
		cost += 1000000
	}
	return cost > limit
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if err == context.DeadlineExceeded {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadline") || strings.Contains(msg, "context canceled")
}

// evalRuleScript runs the rule body with the given globals and returns the
// result, a sandbox violation name, or a script error.
func (sb ruleSandbox) evalRuleScript(globals map[string]lua.LValue, code string) (lua.LValue, string, error) {
	if instructionCapWouldTrip(code, sb.instructionCap) {
		return lua.LNil, sandboxInstructionViolation, nil
	}

	L := newRuleState()
	defer L.Close()

	if sb.timeoutMs > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(sb.timeoutMs)*time.Millisecond)
		defer cancel()
		L.SetContext(ctx)
	}

	for k, v := range globals {
		L.SetGlobal(k, v)
	}

	fn, err := L.LoadString(code)
	if err != nil {
		return lua.LNil, "", err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isTimeoutError(err) {
			return lua.LNil, sandboxTimeoutViolation, nil
		}
		return lua.LNil, "", err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, "", nil
}
